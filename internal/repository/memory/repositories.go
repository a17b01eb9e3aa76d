package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-memdb"

	"dochub/internal/domain"
)

// UserRepository

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	existing, err := txn.First(tblUsers, "email", email)
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return domain.Conflict("user with this email already exists")
	}

	user.ID = r.db.userSeq.Add(1)
	user.Email = email
	user.DateJoined = now()

	stored := *user
	if err := txn.Insert(tblUsers, &stored); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if raw == nil {
		return nil, domain.NotFound("user not found")
	}
	user := *raw.(*domain.User)
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "email", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if raw == nil {
		return nil, domain.NotFound("user not found")
	}
	user := *raw.(*domain.User)
	return &user, nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	return r.modify(user.ID, func(stored *domain.User) {
		stored.FirstName = user.FirstName
		stored.LastName = user.LastName
		stored.Bio = user.Bio
		stored.ProfilePicture = user.ProfilePicture
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return r.modify(id, func(stored *domain.User) {
		stored.PasswordHash = passwordHash
	})
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id int64) error {
	return r.modify(id, func(stored *domain.User) {
		t := now()
		stored.LastLogin = &t
	})
}

// modify копирует запись, применяет изменения и вставляет копию обратно
func (r *UserRepository) modify(id int64, apply func(*domain.User)) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", id)
	if err != nil {
		return fmt.Errorf("find user by id: %w", err)
	}
	if raw == nil {
		return domain.NotFound("user not found")
	}

	updated := *raw.(*domain.User)
	apply(&updated)
	if err := txn.Insert(tblUsers, &updated); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	txn.Commit()
	return nil
}

// DocumentRepository

type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(_ context.Context, doc *domain.Document, first *domain.Version) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tblDocuments, "slug", doc.Slug)
	if err != nil {
		return fmt.Errorf("find document by slug: %w", err)
	}
	if existing != nil {
		return domain.Conflict("document with slug %q already exists", doc.Slug)
	}

	ts := now()
	doc.ID = r.db.docSeq.Add(1)
	doc.CreatedAt = ts
	doc.UpdatedAt = ts
	doc.CurrentVersion = 1
	if doc.Tags == nil {
		doc.Tags = []string{}
	}

	stored := *doc
	stored.Tags = append([]string{}, doc.Tags...)
	if err := txn.Insert(tblDocuments, &stored); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	first.ID = r.db.versionSeq.Add(1)
	first.DocumentID = doc.ID
	first.VersionNumber = 1
	first.CreatedAt = ts
	version := *first
	if err := txn.Insert(tblVersions, &version); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	txn.Commit()

	doc.VersionCount = 1
	doc.ShareCount = 0
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	return r.getOne("id", id)
}

func (r *DocumentRepository) GetBySlug(_ context.Context, slug string) (*domain.Document, error) {
	return r.getOne("slug", slug)
}

func (r *DocumentRepository) getOne(index string, arg interface{}) (*domain.Document, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, index, arg)
	if err != nil {
		return nil, fmt.Errorf("find document by %s: %w", index, err)
	}
	if raw == nil {
		return nil, domain.NotFound("document not found")
	}
	doc := r.db.decorate(txn, raw.(*domain.Document))
	return &doc, nil
}

func (r *DocumentRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "slug", slug)
	if err != nil {
		return false, fmt.Errorf("find document by slug: %w", err)
	}
	return raw != nil, nil
}

func (r *DocumentRepository) ListVisible(_ context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(opts, func(txn *memdb.Txn, doc *domain.Document) bool {
		return canView(txn, doc, userID)
	})
}

func (r *DocumentRepository) ListOwned(_ context.Context, ownerID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(opts, func(_ *memdb.Txn, doc *domain.Document) bool {
		return doc.OwnerID == ownerID
	})
}

func (r *DocumentRepository) ListSharedWith(_ context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(opts, func(txn *memdb.Txn, doc *domain.Document) bool {
		raw, err := txn.First(tblShares, "document_id_shared_with", doc.ID, userID)
		return err == nil && raw != nil
	})
}

func (r *DocumentRepository) ListStarred(_ context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(opts, func(txn *memdb.Txn, doc *domain.Document) bool {
		raw, err := txn.First(tblStars, "id", userID, doc.ID)
		return err == nil && raw != nil && canView(txn, doc, userID)
	})
}

func (r *DocumentRepository) list(
	opts domain.ListOptions,
	filter func(*memdb.Txn, *domain.Document) bool,
) ([]domain.Document, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	docs := []domain.Document{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		doc := raw.(*domain.Document)
		if !filter(txn, doc) || !matches(doc, opts.Search) {
			continue
		}
		docs = append(docs, r.db.decorate(txn, doc))
	}

	sortDocuments(docs, opts.Ordering)
	return docs, nil
}

func (r *DocumentRepository) Update(_ context.Context, doc *domain.Document) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", doc.ID)
	if err != nil {
		return fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return domain.NotFound("document not found")
	}

	updated := *raw.(*domain.Document)
	updated.Title = doc.Title
	updated.Description = doc.Description
	updated.IsPublic = doc.IsPublic
	updated.Tags = append([]string{}, doc.Tags...)
	updated.UpdatedAt = now()
	if err := txn.Insert(tblDocuments, &updated); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	txn.Commit()

	doc.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, id int64) ([]string, error) {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return nil, domain.NotFound("document not found")
	}
	doc := raw.(*domain.Document)

	keys := map[string]bool{doc.FileKey: true}
	it, err := txn.Get(tblVersions, "document_id", id)
	if err != nil {
		return nil, fmt.Errorf("fetch versions: %w", err)
	}
	for v := it.Next(); v != nil; v = it.Next() {
		keys[v.(*domain.Version).FileKey] = true
	}

	if err := txn.Delete(tblDocuments, doc); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	// Зависимые записи удаляются вместе с документом
	for _, table := range []string{tblVersions, tblComments, tblShares, tblStars} {
		if _, err := txn.DeleteAll(table, "document_id", id); err != nil {
			return nil, fmt.Errorf("delete %s: %w", table, err)
		}
	}
	txn.Commit()

	result := make([]string, 0, len(keys))
	for key := range keys {
		result = append(result, key)
	}
	sort.Strings(result)
	return result, nil
}

func (r *DocumentRepository) SetStarred(_ context.Context, userID, documentID int64, starred bool) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblStars, "id", userID, documentID)
	if err != nil {
		return fmt.Errorf("find star: %w", err)
	}

	switch {
	case starred && raw == nil:
		if err := txn.Insert(tblStars, &starRecord{UserID: userID, DocumentID: documentID, CreatedAt: now()}); err != nil {
			return fmt.Errorf("insert star: %w", err)
		}
	case !starred && raw != nil:
		if err := txn.Delete(tblStars, raw); err != nil {
			return fmt.Errorf("delete star: %w", err)
		}
	}
	txn.Commit()
	return nil
}

func (r *DocumentRepository) StarredIDs(_ context.Context, userID int64) (map[int64]bool, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblStars, "user_id", userID)
	if err != nil {
		return nil, fmt.Errorf("fetch stars: %w", err)
	}

	starred := map[int64]bool{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		starred[raw.(*starRecord).DocumentID] = true
	}
	return starred, nil
}

// VersionRepository

type VersionRepository struct {
	db *DB
}

func NewVersionRepository(db *DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Add выполняется в одной пишущей транзакции, номера версий не пересекаются
func (r *VersionRepository) Add(_ context.Context, version *domain.Version, fileType string) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", version.DocumentID)
	if err != nil {
		return fmt.Errorf("find document by id: %w", err)
	}
	if raw == nil {
		return domain.NotFound("document not found")
	}

	it, err := txn.Get(tblVersions, "document_id", version.DocumentID)
	if err != nil {
		return fmt.Errorf("fetch versions: %w", err)
	}
	latest := 0
	for v := it.Next(); v != nil; v = it.Next() {
		if n := v.(*domain.Version).VersionNumber; n > latest {
			latest = n
		}
	}

	ts := now()
	version.ID = r.db.versionSeq.Add(1)
	version.VersionNumber = latest + 1
	version.CreatedAt = ts
	stored := *version
	if err := txn.Insert(tblVersions, &stored); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	doc := *raw.(*domain.Document)
	doc.CurrentVersion = version.VersionNumber
	doc.FileKey = version.FileKey
	doc.FileSize = version.FileSize
	if fileType != "" {
		doc.FileType = fileType
	}
	doc.UpdatedAt = ts
	if err := txn.Insert(tblDocuments, &doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	txn.Commit()
	return nil
}

func (r *VersionRepository) ListByDocument(_ context.Context, documentID int64) ([]domain.Version, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblVersions, "document_id", documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch versions: %w", err)
	}

	versions := []domain.Version{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		v := *raw.(*domain.Version)
		if v.CreatedByID != nil {
			v.CreatedBy = r.db.userSummary(txn, *v.CreatedByID)
		}
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	return versions, nil
}

// CommentRepository

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	ts := now()
	comment.ID = r.db.commentSeq.Add(1)
	comment.CreatedAt = ts
	comment.UpdatedAt = ts

	stored := *comment
	if err := txn.Insert(tblComments, &stored); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblComments, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	if raw == nil {
		return nil, domain.NotFound("comment not found")
	}

	comment := *raw.(*domain.Comment)
	comment.Author = r.db.userSummary(txn, comment.AuthorID)
	return &comment, nil
}

func (r *CommentRepository) ListByDocument(_ context.Context, documentID int64) ([]domain.Comment, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblComments, "document_id", documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	comments := []domain.Comment{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		c := *raw.(*domain.Comment)
		c.Author = r.db.userSummary(txn, c.AuthorID)
		comments = append(comments, c)
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (r *CommentRepository) Update(_ context.Context, comment *domain.Comment) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblComments, "id", comment.ID)
	if err != nil {
		return fmt.Errorf("find comment by id: %w", err)
	}
	if raw == nil {
		return domain.NotFound("comment not found")
	}

	updated := *raw.(*domain.Comment)
	updated.Content = comment.Content
	updated.UpdatedAt = now()
	if err := txn.Insert(tblComments, &updated); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	txn.Commit()

	comment.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *CommentRepository) Delete(_ context.Context, id int64) error {
	return deleteByID(r.db, tblComments, id, "comment")
}

// ShareRepository

type ShareRepository struct {
	db *DB
}

func NewShareRepository(db *DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Upsert(_ context.Context, share *domain.Share) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblShares, "document_id_shared_with", share.DocumentID, share.SharedWithID)
	if err != nil {
		return fmt.Errorf("find share: %w", err)
	}

	var stored domain.Share
	if raw != nil {
		stored = *raw.(*domain.Share)
		stored.Permission = share.Permission
	} else {
		stored = *share
		stored.ID = r.db.shareSeq.Add(1)
		stored.CreatedAt = now()
	}

	if err := txn.Insert(tblShares, &stored); err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}
	txn.Commit()

	share.ID = stored.ID
	share.CreatedAt = stored.CreatedAt
	return nil
}

func (r *ShareRepository) GetByID(_ context.Context, id int64) (*domain.Share, error) {
	return r.getOne("id", id)
}

func (r *ShareRepository) GetForUser(_ context.Context, documentID, userID int64) (*domain.Share, error) {
	return r.getOne("document_id_shared_with", documentID, userID)
}

func (r *ShareRepository) getOne(index string, args ...interface{}) (*domain.Share, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblShares, index, args...)
	if err != nil {
		return nil, fmt.Errorf("find share: %w", err)
	}
	if raw == nil {
		return nil, domain.NotFound("share not found")
	}

	share := *raw.(*domain.Share)
	share.SharedWith = r.db.userSummary(txn, share.SharedWithID)
	return &share, nil
}

func (r *ShareRepository) ListByDocument(_ context.Context, documentID int64) ([]domain.Share, error) {
	txn := r.db.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblShares, "document_id", documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch shares: %w", err)
	}

	shares := []domain.Share{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		s := *raw.(*domain.Share)
		s.SharedWith = r.db.userSummary(txn, s.SharedWithID)
		shares = append(shares, s)
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].ID > shares[j].ID
	})
	return shares, nil
}

func (r *ShareRepository) UpdatePermission(_ context.Context, id int64, permission domain.Permission) error {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblShares, "id", id)
	if err != nil {
		return fmt.Errorf("find share: %w", err)
	}
	if raw == nil {
		return domain.NotFound("share not found")
	}

	updated := *raw.(*domain.Share)
	updated.Permission = permission
	if err := txn.Insert(tblShares, &updated); err != nil {
		return fmt.Errorf("update share: %w", err)
	}
	txn.Commit()
	return nil
}

func (r *ShareRepository) Delete(_ context.Context, id int64) error {
	return deleteByID(r.db, tblShares, id, "share")
}

func deleteByID(db *DB, table string, id int64, what string) error {
	txn := db.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(table, "id", id)
	if err != nil {
		return fmt.Errorf("find %s: %w", what, err)
	}
	if raw == nil {
		return domain.NotFound("%s not found", what)
	}
	if err := txn.Delete(table, raw); err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	txn.Commit()
	return nil
}

// StorageQuotaRepository

type StorageQuotaRepository struct {
	db *DB
}

func NewStorageQuotaRepository(db *DB) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db}
}

func (r *StorageQuotaRepository) GetQuota(_ context.Context, ownerID int64) (*domain.StorageQuota, error) {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	quota, err := r.getOrCreate(txn, ownerID)
	if err != nil {
		return nil, err
	}
	txn.Commit()
	return quota, nil
}

func (r *StorageQuotaRepository) CalculateAndUpdateUsedSpace(_ context.Context, ownerID int64) (int64, error) {
	txn := r.db.db.Txn(true)
	defer txn.Abort()

	quota, err := r.getOrCreate(txn, ownerID)
	if err != nil {
		return 0, err
	}

	it, err := txn.Get(tblDocuments, "owner_id", ownerID)
	if err != nil {
		return 0, fmt.Errorf("fetch documents: %w", err)
	}
	var used int64
	for raw := it.Next(); raw != nil; raw = it.Next() {
		used += raw.(*domain.Document).FileSize
	}

	quota.UsedBytes = used
	quota.UpdatedAt = now()
	if err := txn.Insert(tblQuotas, quota); err != nil {
		return 0, fmt.Errorf("update quota: %w", err)
	}
	txn.Commit()
	return used, nil
}

// getOrCreate возвращает копию квоты, создавая ее с лимитом по умолчанию
func (r *StorageQuotaRepository) getOrCreate(txn *memdb.Txn, ownerID int64) (*domain.StorageQuota, error) {
	raw, err := txn.First(tblQuotas, "id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("find quota: %w", err)
	}
	if raw != nil {
		quota := *raw.(*domain.StorageQuota)
		return &quota, nil
	}

	ts := now()
	quota := &domain.StorageQuota{
		ID:              r.db.quotaSeq.Add(1),
		OwnerID:         ownerID,
		TotalBytesLimit: r.db.defaultLimit,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := txn.Insert(tblQuotas, quota); err != nil {
		return nil, fmt.Errorf("insert quota: %w", err)
	}

	copied := *quota
	return &copied, nil
}
