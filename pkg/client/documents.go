package client

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// DocumentStore держит локальные коллекции документов. Каждая мутация сначала
// выполняется на сервере, затем канонический ответ заменяет локальные копии по ID.
type DocumentStore struct {
	backend  Backend
	notifier Notifier

	mu      sync.RWMutex
	all     []Document
	owned   []Document
	shared  []Document
	starred []Document
	current *DocumentDetail
	loading int
	lastErr error
}

func NewDocumentStore(backend Backend, notifier Notifier) *DocumentStore {
	return &DocumentStore{
		backend:  backend,
		notifier: notifierOrNop(notifier),
	}
}

func (s *DocumentStore) All() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.all)
}

func (s *DocumentStore) Owned() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.owned)
}

func (s *DocumentStore) Shared() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shared)
}

func (s *DocumentStore) Starred() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.starred)
}

// Current возвращает копию открытого документа или nil
func (s *DocumentStore) Current() *DocumentDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDetail(s.current)
}

func (s *DocumentStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *DocumentStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *DocumentStore) FetchAll(ctx context.Context) ([]Document, error) {
	return s.fetch(ctx, "Failed to fetch documents", s.backend.ListDocuments, &s.all)
}

func (s *DocumentStore) FetchOwned(ctx context.Context) ([]Document, error) {
	return s.fetch(ctx, "Failed to fetch your documents", s.backend.MyDocuments, &s.owned)
}

func (s *DocumentStore) FetchShared(ctx context.Context) ([]Document, error) {
	return s.fetch(ctx, "Failed to fetch documents shared with you", s.backend.SharedWithMe, &s.shared)
}

func (s *DocumentStore) FetchStarred(ctx context.Context) ([]Document, error) {
	return s.fetch(ctx, "Failed to fetch starred documents", s.backend.StarredDocuments, &s.starred)
}

func (s *DocumentStore) fetch(
	ctx context.Context,
	failure string,
	list func(context.Context, ListOptions) ([]Document, error),
	target *[]Document,
) ([]Document, error) {
	s.begin()
	defer s.end()

	docs, err := list(ctx, ListOptions{})
	if err != nil {
		return nil, s.fail(failure, err)
	}

	s.mu.Lock()
	*target = slices.Clone(docs)
	s.mu.Unlock()
	return docs, nil
}

// FetchBySlug загружает детальную карточку и делает ее текущей
func (s *DocumentStore) FetchBySlug(ctx context.Context, slug string) (*DocumentDetail, error) {
	s.begin()
	defer s.end()

	detail, err := s.backend.GetDocument(ctx, slug)
	if err != nil {
		return nil, s.fail("Failed to fetch document details", err)
	}

	s.mu.Lock()
	s.current = cloneDetail(detail)
	s.reconcile(detail.Document)
	s.mu.Unlock()
	return cloneDetail(detail), nil
}

func (s *DocumentStore) Create(ctx context.Context, upload Upload) (*Document, error) {
	if upload.FileName == "" || upload.Data == nil {
		return nil, s.fail("Failed to create document", validationError("file: No file was submitted."))
	}

	s.begin()
	defer s.end()

	doc, err := s.backend.CreateDocument(ctx, upload)
	if err != nil {
		return nil, s.fail("Failed to create document", err)
	}

	s.mu.Lock()
	s.owned = prepend(s.owned, *doc)
	s.all = prepend(s.all, *doc)
	s.mu.Unlock()

	s.notify("Document created", "Your document has been created successfully")
	return doc, nil
}

func (s *DocumentStore) Update(ctx context.Context, slug string, update DocumentUpdate) (*Document, error) {
	s.begin()
	defer s.end()

	doc, err := s.backend.UpdateDocument(ctx, slug, update)
	if err != nil {
		return nil, s.fail("Failed to update document", err)
	}

	s.mu.Lock()
	s.reconcile(*doc)
	s.mu.Unlock()

	s.notify("Document updated", "Your document has been updated successfully")
	return doc, nil
}

// Delete удаляет документ со всех локальных коллекций сразу
func (s *DocumentStore) Delete(ctx context.Context, slug string) error {
	s.begin()
	defer s.end()

	if err := s.backend.DeleteDocument(ctx, slug); err != nil {
		return s.fail("Failed to delete document", err)
	}

	bySlug := func(d Document) bool { return d.Slug == slug }
	s.mu.Lock()
	s.all = without(s.all, bySlug)
	s.owned = without(s.owned, bySlug)
	s.shared = without(s.shared, bySlug)
	s.starred = without(s.starred, bySlug)
	if s.current != nil && s.current.Slug == slug {
		s.current = nil
	}
	s.mu.Unlock()

	s.notify("Document deleted", "Your document has been deleted successfully")
	return nil
}

// ToggleStar переключает избранное. Документ должен быть в одной из видимых коллекций.
func (s *DocumentStore) ToggleStar(ctx context.Context, slug string) (*Document, error) {
	if !s.visible(slug) {
		return nil, s.fail("Failed to update star", &APIError{Status: http.StatusNotFound, Detail: "No Document matches the given query."})
	}

	s.begin()
	defer s.end()

	doc, err := s.backend.ToggleStar(ctx, slug)
	if err != nil {
		return nil, s.fail("Failed to update star", err)
	}

	s.mu.Lock()
	s.reconcile(*doc)
	byID := func(d Document) bool { return d.ID == doc.ID }
	if doc.IsStarred {
		if !slices.ContainsFunc(s.starred, byID) {
			s.starred = prepend(s.starred, *doc)
		}
	} else {
		s.starred = without(s.starred, byID)
	}
	s.mu.Unlock()

	return doc, nil
}

func (s *DocumentStore) AddComment(ctx context.Context, documentID int64, content string) (*Comment, error) {
	s.begin()
	defer s.end()

	comment, err := s.backend.AddComment(ctx, documentID, content)
	if err != nil {
		return nil, s.fail("Failed to add comment", err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == documentID {
		next := cloneDetail(s.current)
		next.Comments = append(next.Comments, *comment)
		s.current = next
	}
	s.mu.Unlock()

	s.notify("Comment added", "Your comment has been added successfully")
	return comment, nil
}

func (s *DocumentStore) DeleteComment(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	if err := s.backend.DeleteComment(ctx, id); err != nil {
		return s.fail("Failed to delete comment", err)
	}

	s.mu.Lock()
	if s.current != nil {
		next := cloneDetail(s.current)
		next.Comments = slices.DeleteFunc(next.Comments, func(c Comment) bool { return c.ID == id })
		s.current = next
	}
	s.mu.Unlock()

	s.notify("Comment deleted", "The comment has been deleted successfully")
	return nil
}

// AddVersion загружает новую версию и сверяет родительский документ с сервером
func (s *DocumentStore) AddVersion(ctx context.Context, slug string, upload VersionUpload) (*Version, error) {
	if upload.FileName == "" || upload.Data == nil {
		return nil, s.fail("Failed to add new version", validationError("file: No file was submitted."))
	}

	s.begin()
	defer s.end()

	version, err := s.backend.AddVersion(ctx, slug, upload)
	if err != nil {
		return nil, s.fail("Failed to add new version", err)
	}

	parent, err := s.backend.GetDocument(ctx, slug)
	if err != nil {
		return nil, s.fail("Failed to add new version", err)
	}

	s.mu.Lock()
	s.reconcile(parent.Document)
	if s.current != nil && s.current.ID == parent.ID {
		next := cloneDetail(s.current)
		next.Document = parent.Document
		next.Versions = slices.DeleteFunc(next.Versions, func(v Version) bool { return v.ID == version.ID })
		next.Versions = append([]Version{*version}, next.Versions...)
		s.current = next
	}
	s.mu.Unlock()

	s.notify("New version added", "A new version of the document has been added successfully")
	return version, nil
}

// Share выдает доступ; повторная выдача тому же пользователю меняет право.
// После выдачи документ перечитывается и заменяет все локальные копии.
func (s *DocumentStore) Share(ctx context.Context, slug string, userID int64, permission Permission) (*Share, error) {
	s.begin()
	defer s.end()

	share, err := s.backend.Share(ctx, slug, userID, permission)
	if err != nil {
		return nil, s.fail("Failed to share document", err)
	}

	parent, err := s.backend.GetDocumentByID(ctx, share.DocumentID)
	if err != nil {
		return nil, s.fail("Failed to share document", err)
	}

	s.mu.Lock()
	s.reconcileDetail(parent)
	s.mu.Unlock()

	s.notify("Document shared", "The document has been shared successfully")
	return share, nil
}

// RemoveShare отзывает доступ и сверяет родительский документ с сервером
func (s *DocumentStore) RemoveShare(ctx context.Context, id int64) error {
	s.begin()
	defer s.end()

	documentID, err := s.shareDocument(ctx, id)
	if err != nil {
		return s.fail("Failed to remove share", err)
	}

	if err := s.backend.RemoveShare(ctx, id); err != nil {
		return s.fail("Failed to remove share", err)
	}

	parent, err := s.backend.GetDocumentByID(ctx, documentID)
	if err != nil {
		return s.fail("Failed to remove share", err)
	}

	s.mu.Lock()
	s.reconcileDetail(parent)
	s.mu.Unlock()

	s.notify("Share removed", "The document share has been removed successfully")
	return nil
}

// shareDocument находит документ выдачи: в открытой карточке или на сервере
func (s *DocumentStore) shareDocument(ctx context.Context, id int64) (int64, error) {
	s.mu.RLock()
	if s.current != nil {
		if slices.ContainsFunc(s.current.Shares, func(sh Share) bool { return sh.ID == id }) {
			documentID := s.current.ID
			s.mu.RUnlock()
			return documentID, nil
		}
	}
	s.mu.RUnlock()

	share, err := s.backend.GetShare(ctx, id)
	if err != nil {
		return 0, err
	}
	return share.DocumentID, nil
}

// Search ищет подстроку без учета регистра в заголовке, описании и тегах
// по всем загруженным коллекциям. Коллекции не меняются.
func (s *DocumentStore) Search(query string) []Document {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool)
	var result []Document
	for _, list := range [][]Document{s.all, s.owned, s.shared, s.starred} {
		for _, doc := range list {
			if seen[doc.ID] || !matches(doc, q) {
				continue
			}
			seen[doc.ID] = true
			result = append(result, doc)
		}
	}
	return result
}

func matches(doc Document, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Title), q) || strings.Contains(strings.ToLower(doc.Description), q) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (s *DocumentStore) visible(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySlug := func(d Document) bool { return d.Slug == slug }
	if s.current != nil && s.current.Slug == slug {
		return true
	}
	for _, list := range [][]Document{s.all, s.owned, s.shared, s.starred} {
		if slices.ContainsFunc(list, bySlug) {
			return true
		}
	}
	return false
}

// reconcile заменяет все локальные копии документа канонической версией.
// Вызывается под s.mu.
func (s *DocumentStore) reconcile(doc Document) {
	s.all = replace(s.all, doc)
	s.owned = replace(s.owned, doc)
	s.shared = replace(s.shared, doc)
	s.starred = replace(s.starred, doc)
	if s.current != nil && s.current.ID == doc.ID {
		next := cloneDetail(s.current)
		next.Document = doc
		s.current = next
	}
}

// reconcileDetail заменяет локальные копии и, если документ открыт,
// его доступы. Вызывается под s.mu.
func (s *DocumentStore) reconcileDetail(detail *DocumentDetail) {
	s.reconcile(detail.Document)
	if s.current != nil && s.current.ID == detail.ID {
		next := cloneDetail(s.current)
		next.Shares = slices.Clone(detail.Shares)
		s.current = next
	}
}

func (s *DocumentStore) begin() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *DocumentStore) end() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *DocumentStore) notify(title, message string) {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	s.notifier.Notify(Notification{Level: LevelInfo, Title: title, Message: message})
}

func (s *DocumentStore) fail(title string, err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.notifier.Notify(Notification{Level: LevelError, Title: title, Message: err.Error()})
	return err
}

// Коллекции не меняются на месте: каждая операция строит новый срез

func replace(docs []Document, doc Document) []Document {
	idx := slices.IndexFunc(docs, func(d Document) bool { return d.ID == doc.ID })
	if idx < 0 {
		return docs
	}
	next := slices.Clone(docs)
	next[idx] = doc
	return next
}

func prepend(docs []Document, doc Document) []Document {
	next := make([]Document, 0, len(docs)+1)
	next = append(next, doc)
	return append(next, docs...)
}

func without(docs []Document, match func(Document) bool) []Document {
	if !slices.ContainsFunc(docs, match) {
		return docs
	}
	return slices.DeleteFunc(slices.Clone(docs), match)
}

func cloneDetail(d *DocumentDetail) *DocumentDetail {
	if d == nil {
		return nil
	}
	c := *d
	c.Tags = slices.Clone(d.Tags)
	c.Comments = slices.Clone(d.Comments)
	c.Versions = slices.Clone(d.Versions)
	c.Shares = slices.Clone(d.Shares)
	return &c
}
