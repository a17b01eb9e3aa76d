package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"dochub/internal/domain"
	"dochub/internal/logging"
	"dochub/internal/storage"
	"dochub/pkg/slug"
)

const (
	maxFileSize       = 100 * 1024 * 1024 // 100MB
	maxTitleLength    = 255
	maxTagLength      = 50
	slugSuffixLength  = 8
	defaultMimeType   = "application/octet-stream"
	errDocumentAbsent = "No Document matches the given query."
)

type CommentRequest struct {
	DocumentID int64  `json:"document"`
	Content    string `json:"content"`
}

type ShareRequest struct {
	SharedWith int64             `json:"shared_with"`
	Permission domain.Permission `json:"permission"`
}

// Download - содержимое файла для отдачи клиенту
type Download struct {
	storage.Object
	FileName string
}

// DocumentService реализует операции над документами и их дочерними записями
type DocumentService struct {
	repos       Repositories
	storage     storage.Storage
	permissions *PermissionService
	quota       *StorageQuotaService
	baseURL     string
	logger      logging.Logger
}

func NewDocumentService(
	repos Repositories,
	store storage.Storage,
	permissions *PermissionService,
	quota *StorageQuotaService,
	baseURL string,
) *DocumentService {
	return &DocumentService{
		repos:       repos,
		storage:     store,
		permissions: permissions,
		quota:       quota,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logging.New("document-service"),
	}
}

// List возвращает документы владельца, публичные и расшаренные пользователю
func (s *DocumentService) List(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	docs, err := s.repos.Documents.ListVisible(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return s.decorateAll(ctx, userID, docs)
}

func (s *DocumentService) MyDocuments(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	docs, err := s.repos.Documents.ListOwned(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned documents: %w", err)
	}
	return s.decorateAll(ctx, userID, docs)
}

func (s *DocumentService) SharedWithMe(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	docs, err := s.repos.Documents.ListSharedWith(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared documents: %w", err)
	}
	return s.decorateAll(ctx, userID, docs)
}

func (s *DocumentService) Starred(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	docs, err := s.repos.Documents.ListStarred(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list starred documents: %w", err)
	}
	return s.decorateAll(ctx, userID, docs)
}

// GetBySlug возвращает документ с комментариями, версиями и доступами.
// Список доступов видит только владелец.
func (s *DocumentService) GetBySlug(ctx context.Context, userID int64, docSlug string) (*domain.DocumentDetail, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, userID, doc)
}

func (s *DocumentService) GetByID(ctx context.Context, userID, id int64) (*domain.DocumentDetail, error) {
	doc, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errDocumentAbsent)
	}
	if err := s.permissions.Require(ctx, userID, doc, OperationView); err != nil {
		return nil, err
	}
	return s.detail(ctx, userID, doc)
}

func (s *DocumentService) detail(ctx context.Context, userID int64, doc *domain.Document) (*domain.DocumentDetail, error) {
	if err := s.decorate(ctx, userID, doc); err != nil {
		return nil, err
	}

	comments, err := s.repos.Comments.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	versions, err := s.repos.Versions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get versions: %w", err)
	}
	s.versionURLs(doc, versions)

	shares := []domain.Share{}
	if doc.OwnerID == userID {
		shares, err = s.repos.Shares.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get shares: %w", err)
		}
	}

	return &domain.DocumentDetail{
		Document: *doc,
		Comments: comments,
		Versions: versions,
		Shares:   shares,
	}, nil
}

// Create загружает файл и создает документ с первой версией
func (s *DocumentService) Create(ctx context.Context, userID int64, upload domain.DocumentUpload) (*domain.Document, error) {
	upload.Title = strings.TrimSpace(upload.Title)
	upload.Tags = normalizeTags(upload.Tags)

	err := validation.ValidateStruct(&upload,
		validation.Field(&upload.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&upload.Tags, validation.Each(validation.Length(1, maxTagLength))),
	)
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}
	if err := checkFile(upload.FileName, upload.Data); err != nil {
		return nil, err
	}

	size := int64(len(upload.Data))
	if err := s.checkQuota(ctx, userID, size, 0); err != nil {
		return nil, err
	}

	docSlug, err := s.uniqueSlug(ctx, upload.Title)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	key := storage.DocumentKey(userID, uuid.NewString(), ext)
	if err := s.storage.Put(ctx, key, upload.Data, contentTypeOf(upload.FileName, upload.ContentType)); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	doc := &domain.Document{
		Slug:        docSlug,
		Title:       upload.Title,
		Description: upload.Description,
		FileKey:     key,
		FileType:    strings.TrimPrefix(ext, "."),
		FileSize:    size,
		IsPublic:    upload.IsPublic,
		OwnerID:     userID,
		Tags:        upload.Tags,
	}
	first := &domain.Version{
		FileKey:     key,
		FileSize:    size,
		Comment:     "Initial version",
		CreatedByID: &userID,
	}

	if err := s.repos.Documents.Create(ctx, doc, first); err != nil {
		if deleteErr := s.storage.Delete(ctx, key); deleteErr != nil {
			s.logger.Errorf("[CreateDocument] Failed to delete file %s after db error: %v", key, deleteErr)
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.updateUsedSpace(ctx, userID)
	s.logger.Infof("[CreateDocument] User %d created document %d (%s, %d bytes)", userID, doc.ID, doc.Slug, size)

	return s.reload(ctx, userID, doc.ID)
}

// Update меняет метаданные документа. Slug не меняется.
func (s *DocumentService) Update(ctx context.Context, userID int64, docSlug string, update domain.DocumentUpdate) (*domain.Document, error) {
	doc, err := s.require(ctx, userID, docSlug, OperationEdit)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		err := validation.Validate(title, validation.Required, validation.Length(1, maxTitleLength))
		if err != nil {
			return nil, domain.Validation("title: %s", err.Error())
		}
		doc.Title = title
	}
	if update.Description != nil {
		doc.Description = *update.Description
	}
	if update.IsPublic != nil {
		doc.IsPublic = *update.IsPublic
	}
	if update.Tags != nil {
		tags := normalizeTags(*update.Tags)
		if err := validation.Validate(tags, validation.Each(validation.Length(1, maxTagLength))); err != nil {
			return nil, domain.Validation("tags: %s", err.Error())
		}
		doc.Tags = tags
	}

	if err := s.repos.Documents.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return s.reload(ctx, userID, doc.ID)
}

// Delete удаляет документ, файлы всех его версий и превью
func (s *DocumentService) Delete(ctx context.Context, userID int64, docSlug string) error {
	doc, err := s.require(ctx, userID, docSlug, OperationDelete)
	if err != nil {
		return err
	}

	keys, err := s.repos.Documents.Delete(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	for v := 1; v <= doc.CurrentVersion; v++ {
		keys = append(keys, storage.PreviewKey(doc.ID, v))
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warnf("[DeleteDocument] Failed to delete file %s: %v", key, err)
		}
	}

	s.updateUsedSpace(ctx, doc.OwnerID)
	s.logger.Infof("[DeleteDocument] User %d deleted document %d (%s)", userID, doc.ID, doc.Slug)
	return nil
}

// ToggleStar переключает отметку "избранное" и возвращает документ
func (s *DocumentService) ToggleStar(ctx context.Context, userID int64, docSlug string) (*domain.Document, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}

	starred, err := s.repos.Documents.StarredIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get starred documents: %w", err)
	}
	if err := s.repos.Documents.SetStarred(ctx, userID, doc.ID, !starred[doc.ID]); err != nil {
		return nil, err
	}

	return s.reload(ctx, userID, doc.ID)
}

func (s *DocumentService) ListComments(ctx context.Context, userID int64, docSlug string) ([]domain.Comment, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}

func (s *DocumentService) AddComment(ctx context.Context, userID int64, req CommentRequest) (*domain.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	err := validation.ValidateStruct(&req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Content, validation.Required),
	)
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}

	doc, err := s.repos.Documents.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, notFoundAs(err, errDocumentAbsent)
	}
	if err := s.permissions.Require(ctx, userID, doc, OperationComment); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		DocumentID: doc.ID,
		AuthorID:   userID,
		Content:    req.Content,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return s.repos.Comments.GetByID(ctx, comment.ID)
}

// UpdateComment - менять текст может только автор
func (s *DocumentService) UpdateComment(ctx context.Context, userID, commentID int64, content string) (*domain.Comment, error) {
	comment, err := s.visibleComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, domain.Forbidden("You can only edit your own comments.")
	}

	content = strings.TrimSpace(content)
	if err := validation.Validate(content, validation.Required); err != nil {
		return nil, domain.Validation("content: %s", err.Error())
	}

	comment.Content = content
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return s.repos.Comments.GetByID(ctx, comment.ID)
}

// DeleteComment - удалить комментарий может автор или владелец документа
func (s *DocumentService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := s.visibleComment(ctx, userID, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		doc, err := s.repos.Documents.GetByID(ctx, comment.DocumentID)
		if err != nil {
			return notFoundAs(err, errDocumentAbsent)
		}
		if doc.OwnerID != userID {
			return domain.Forbidden("You can only delete your own comments.")
		}
	}

	return s.repos.Comments.Delete(ctx, comment.ID)
}

func (s *DocumentService) visibleComment(ctx context.Context, userID, commentID int64) (*domain.Comment, error) {
	comment, err := s.repos.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundAs(err, "No Comment matches the given query.")
	}

	doc, err := s.repos.Documents.GetByID(ctx, comment.DocumentID)
	if err != nil {
		return nil, notFoundAs(err, "No Comment matches the given query.")
	}
	if err := s.permissions.Require(ctx, userID, doc, OperationView); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("No Comment matches the given query.")
		}
		return nil, err
	}
	return comment, nil
}

func (s *DocumentService) ListVersions(ctx context.Context, userID int64, docSlug string) ([]domain.Version, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}
	versions, err := s.repos.Versions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get versions: %w", err)
	}
	s.versionURLs(doc, versions)
	return versions, nil
}

// AddVersion загружает новый файл документа. Номер версии - предыдущий максимум + 1.
func (s *DocumentService) AddVersion(ctx context.Context, userID int64, docSlug string, upload domain.VersionUpload) (*domain.Version, error) {
	doc, err := s.require(ctx, userID, docSlug, OperationEdit)
	if err != nil {
		return nil, err
	}
	if err := checkFile(upload.FileName, upload.Data); err != nil {
		return nil, err
	}

	// Место считается по квоте владельца, старая текущая версия перестает учитываться
	size := int64(len(upload.Data))
	if err := s.checkQuota(ctx, doc.OwnerID, size, doc.FileSize); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	key := storage.DocumentKey(doc.OwnerID, uuid.NewString(), ext)
	if err := s.storage.Put(ctx, key, upload.Data, contentTypeOf(upload.FileName, upload.ContentType)); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	version := &domain.Version{
		DocumentID:  doc.ID,
		FileKey:     key,
		FileSize:    size,
		Comment:     strings.TrimSpace(upload.Comment),
		CreatedByID: &userID,
	}
	if err := s.repos.Versions.Add(ctx, version, strings.TrimPrefix(ext, ".")); err != nil {
		if deleteErr := s.storage.Delete(ctx, key); deleteErr != nil {
			s.logger.Errorf("[AddVersion] Failed to delete file %s after db error: %v", key, deleteErr)
		}
		return nil, fmt.Errorf("failed to add version: %w", err)
	}

	s.updateUsedSpace(ctx, doc.OwnerID)

	if user, err := s.repos.Users.GetByID(ctx, userID); err == nil {
		version.CreatedBy = user.Summary()
	}
	version.File = s.versionURL(doc.Slug, version.VersionNumber)

	s.logger.Infof("[AddVersion] User %d added version %d to document %d", userID, version.VersionNumber, doc.ID)
	return version, nil
}

// ListShares - все доступы к документу видит только владелец
func (s *DocumentService) ListShares(ctx context.Context, userID int64, docSlug string) ([]domain.Share, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, domain.Forbidden("You do not have permission to view all shares.")
	}

	shares, err := s.repos.Shares.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	return shares, nil
}

// Share выдает доступ пользователю. Повторная выдача меняет уровень доступа.
func (s *DocumentService) Share(ctx context.Context, userID int64, docSlug string, req ShareRequest) (*domain.Share, error) {
	doc, err := s.require(ctx, userID, docSlug, OperationShare)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateStruct(&req,
		validation.Field(&req.SharedWith, validation.Required),
		validation.Field(&req.Permission, validation.Required, validation.In(
			domain.PermissionView, domain.PermissionComment, domain.PermissionEdit,
		)),
	)
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}

	if req.SharedWith == doc.OwnerID {
		return nil, domain.Validation("shared_with: you cannot share a document with its owner.")
	}
	if _, err := s.repos.Users.GetByID(ctx, req.SharedWith); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation("shared_with: user %d does not exist.", req.SharedWith)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	share := &domain.Share{
		DocumentID:   doc.ID,
		SharedWithID: req.SharedWith,
		Permission:   req.Permission,
	}
	if err := s.repos.Shares.Upsert(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to share document: %w", err)
	}

	s.logger.Infof("[ShareDocument] Document %d shared with user %d (%s)", doc.ID, req.SharedWith, req.Permission)
	return s.repos.Shares.GetByID(ctx, share.ID)
}

func (s *DocumentService) UpdateShare(ctx context.Context, userID, shareID int64, permission domain.Permission) (*domain.Share, error) {
	share, err := s.ownedShare(ctx, userID, shareID)
	if err != nil {
		return nil, err
	}
	if !permission.Valid() {
		return nil, domain.Validation("permission: must be one of view, comment, edit.")
	}

	if err := s.repos.Shares.UpdatePermission(ctx, share.ID, permission); err != nil {
		return nil, fmt.Errorf("failed to update share: %w", err)
	}
	return s.repos.Shares.GetByID(ctx, share.ID)
}

// GetShare возвращает выдачу доступа владельцу документа
func (s *DocumentService) GetShare(ctx context.Context, userID, shareID int64) (*domain.Share, error) {
	return s.ownedShare(ctx, userID, shareID)
}

// RemoveShare - отозвать доступ может только владелец документа
func (s *DocumentService) RemoveShare(ctx context.Context, userID, shareID int64) error {
	share, err := s.ownedShare(ctx, userID, shareID)
	if err != nil {
		return err
	}
	return s.repos.Shares.Delete(ctx, share.ID)
}

func (s *DocumentService) ownedShare(ctx context.Context, userID, shareID int64) (*domain.Share, error) {
	const absent = "No SharedDocument matches the given query."

	share, err := s.repos.Shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, notFoundAs(err, absent)
	}
	doc, err := s.repos.Documents.GetByID(ctx, share.DocumentID)
	if err != nil {
		return nil, notFoundAs(err, absent)
	}

	switch userID {
	case doc.OwnerID:
		return share, nil
	case share.SharedWithID:
		return nil, domain.Forbidden("Only the document owner can manage shares.")
	default:
		return nil, domain.NotFound(absent)
	}
}

// Download отдает файл текущей или указанной версии
func (s *DocumentService) Download(ctx context.Context, userID int64, docSlug string, versionNumber int) (*Download, error) {
	doc, err := s.viewable(ctx, userID, docSlug)
	if err != nil {
		return nil, err
	}

	key := doc.FileKey
	if versionNumber > 0 && versionNumber != doc.CurrentVersion {
		versions, err := s.repos.Versions.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get versions: %w", err)
		}
		key = ""
		for _, v := range versions {
			if v.VersionNumber == versionNumber {
				key = v.FileKey
				break
			}
		}
		if key == "" {
			return nil, domain.NotFound("Version %d not found.", versionNumber)
		}
	}

	obj, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	name := doc.Slug
	if doc.FileType != "" {
		name += "." + doc.FileType
	}
	return &Download{Object: obj, FileName: name}, nil
}

// Viewable возвращает документ, если пользователь может его смотреть
func (s *DocumentService) Viewable(ctx context.Context, userID int64, docSlug string) (*domain.Document, error) {
	return s.viewable(ctx, userID, docSlug)
}

func (s *DocumentService) viewable(ctx context.Context, userID int64, docSlug string) (*domain.Document, error) {
	return s.require(ctx, userID, docSlug, OperationView)
}

func (s *DocumentService) require(ctx context.Context, userID int64, docSlug string, op OperationType) (*domain.Document, error) {
	doc, err := s.repos.Documents.GetBySlug(ctx, docSlug)
	if err != nil {
		return nil, notFoundAs(err, errDocumentAbsent)
	}
	if err := s.permissions.Require(ctx, userID, doc, op); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) reload(ctx context.Context, userID, id int64) (*domain.Document, error) {
	doc, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload document: %w", err)
	}
	if err := s.decorate(ctx, userID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) decorate(ctx context.Context, userID int64, doc *domain.Document) error {
	starred, err := s.repos.Documents.StarredIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get starred documents: %w", err)
	}
	doc.IsStarred = starred[doc.ID]
	doc.File = s.fileURL(doc.Slug)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return nil
}

func (s *DocumentService) decorateAll(ctx context.Context, userID int64, docs []domain.Document) ([]domain.Document, error) {
	starred, err := s.repos.Documents.StarredIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get starred documents: %w", err)
	}
	for i := range docs {
		docs[i].IsStarred = starred[docs[i].ID]
		docs[i].File = s.fileURL(docs[i].Slug)
		if docs[i].Tags == nil {
			docs[i].Tags = []string{}
		}
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (s *DocumentService) versionURLs(doc *domain.Document, versions []domain.Version) {
	for i := range versions {
		versions[i].File = s.versionURL(doc.Slug, versions[i].VersionNumber)
	}
}

func (s *DocumentService) fileURL(docSlug string) string {
	return s.baseURL + "/documents/" + docSlug + "/download/"
}

func (s *DocumentService) versionURL(docSlug string, version int) string {
	return s.fileURL(docSlug) + "?version=" + strconv.Itoa(version)
}

// uniqueSlug строит slug из заголовка, при коллизии добавляет случайный суффикс
func (s *DocumentService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	candidate := base
	for range 5 {
		exists, err := s.repos.Documents.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
		candidate = slug.WithSuffix(base, suffix)
	}
	return "", domain.Conflict("could not generate a unique slug for %q", title)
}

func (s *DocumentService) checkQuota(ctx context.Context, ownerID, required, replaced int64) error {
	ok, err := s.quota.CheckSpaceAvailable(ctx, ownerID, required, replaced)
	if err != nil {
		return fmt.Errorf("failed to check available space: %w", err)
	}
	if !ok {
		return domain.ErrQuotaExceeded
	}
	return nil
}

func (s *DocumentService) updateUsedSpace(ctx context.Context, ownerID int64) {
	if err := s.quota.UpdateUsedSpace(ctx, ownerID); err != nil {
		s.logger.Errorf("[UpdateUsedSpace] Failed to update used space for user %d: %v", ownerID, err)
	}
}

func checkFile(name string, data []byte) error {
	if name == "" || len(data) == 0 {
		return domain.Validation("file: No file was submitted.")
	}
	if len(data) > maxFileSize {
		return domain.Validation("file: file size exceeds maximum allowed size of %d bytes", maxFileSize)
	}
	return nil
}

func contentTypeOf(fileName, declared string) string {
	if declared != "" && declared != defaultMimeType {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); t != "" {
		return t
	}
	return defaultMimeType
}

// normalizeTags убирает пробелы, пустые значения и повторы
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("%s", message)
	}
	return err
}
