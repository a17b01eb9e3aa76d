package repository

import (
	"context"
	"dochub/internal/domain"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type DocumentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// documentRow - строка выборки документа вместе с владельцем
type documentRow struct {
	domain.Document
	Tags                pq.StringArray `db:"tags"`
	OwnerEmail          string         `db:"owner_email"`
	OwnerFirstName      string         `db:"owner_first_name"`
	OwnerLastName       string         `db:"owner_last_name"`
	OwnerProfilePicture *string        `db:"owner_profile_picture"`
}

func (row documentRow) toDomain() domain.Document {
	doc := row.Document
	doc.Tags = []string(row.Tags)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	doc.Owner = summaryOf(doc.OwnerID, row.OwnerEmail, row.OwnerFirstName, row.OwnerLastName, row.OwnerProfilePicture)
	return doc
}

func summaryOf(id int64, email, firstName, lastName string, picture *string) domain.UserSummary {
	return domain.User{
		ID:             id,
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		ProfilePicture: picture,
	}.Summary()
}

// version_count и share_count считаются по дочерним таблицам
const documentSelect = `
    SELECT
        d.id, d.slug, d.title, d.description, d.file_key, d.file_type, d.file_size,
        d.is_public, d.owner_id, d.created_at, d.updated_at, d.current_version, d.tags,
        u.email AS owner_email,
        u.first_name AS owner_first_name,
        u.last_name AS owner_last_name,
        u.profile_picture AS owner_profile_picture,
        (SELECT COUNT(*) FROM document_versions v WHERE v.document_id = d.id) AS version_count,
        (SELECT COUNT(*) FROM shared_documents s WHERE s.document_id = d.id) AS share_count
    FROM documents d
    JOIN users u ON u.id = d.owner_id`

// условие видимости документа для пользователя $1
const visibleCondition = `(
        d.owner_id = $1
        OR d.is_public
        OR EXISTS (SELECT 1 FROM shared_documents s WHERE s.document_id = d.id AND s.shared_with = $1)
    )`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document, first *domain.Version) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	// Вставляем документ
	query := `
        INSERT INTO documents (
            slug, title, description, file_key, file_type,
            file_size, owner_id, is_public, tags, current_version
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, 1
        ) RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(
		ctx,
		query,
		doc.Slug,
		doc.Title,
		doc.Description,
		doc.FileKey,
		doc.FileType,
		doc.FileSize,
		doc.OwnerID,
		doc.IsPublic,
		pq.Array(tags),
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("document with slug %q already exists", doc.Slug)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	// Первая версия создается вместе с документом
	first.DocumentID = doc.ID
	first.VersionNumber = 1
	versionQuery := `
        INSERT INTO document_versions (document_id, version_number, file_key, file_size, comment, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err = tx.QueryRowContext(
		ctx,
		versionQuery,
		first.DocumentID,
		first.VersionNumber,
		first.FileKey,
		first.FileSize,
		first.Comment,
		first.CreatedByID,
	).Scan(&first.ID, &first.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create first version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	doc.Tags = tags
	doc.CurrentVersion = 1
	doc.VersionCount = 1
	doc.ShareCount = 0
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	return r.getOne(ctx, documentSelect+` WHERE d.id = $1`, id)
}

func (r *DocumentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	return r.getOne(ctx, documentSelect+` WHERE d.slug = $1`, slug)
}

func (r *DocumentRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Document, error) {
	var row documentRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		return nil, wrapNotFound(err, "document")
	}
	doc := row.toDomain()
	return &doc, nil
}

func (r *DocumentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM documents WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// ListVisible возвращает свои, публичные и расшаренные документы без повторов
func (r *DocumentRepository) ListVisible(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(ctx, visibleCondition, []interface{}{userID}, opts)
}

func (r *DocumentRepository) ListOwned(ctx context.Context, ownerID int64, opts domain.ListOptions) ([]domain.Document, error) {
	return r.list(ctx, `d.owner_id = $1`, []interface{}{ownerID}, opts)
}

func (r *DocumentRepository) ListSharedWith(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	where := `EXISTS (SELECT 1 FROM shared_documents s WHERE s.document_id = d.id AND s.shared_with = $1)`
	return r.list(ctx, where, []interface{}{userID}, opts)
}

// ListStarred возвращает отмеченные документы, которые пользователь все еще видит
func (r *DocumentRepository) ListStarred(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error) {
	where := `EXISTS (SELECT 1 FROM document_stars st WHERE st.document_id = d.id AND st.user_id = $1) AND ` + visibleCondition
	return r.list(ctx, where, []interface{}{userID}, opts)
}

func (r *DocumentRepository) list(ctx context.Context, where string, args []interface{}, opts domain.ListOptions) ([]domain.Document, error) {
	query := documentSelect + ` WHERE ` + where

	if opts.Search != "" {
		args = append(args, opts.Search)
		query += fmt.Sprintf(`
        AND (
            d.title ILIKE '%%' || $%[1]d || '%%'
            OR d.description ILIKE '%%' || $%[1]d || '%%'
            OR EXISTS (SELECT 1 FROM unnest(d.tags) t WHERE t ILIKE '%%' || $%[1]d || '%%')
        )`, len(args))
	}

	// Поле сортировки берется только из белого списка
	field, desc := domain.ParseOrdering(opts.Ordering)
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY d.%s %s, d.id %s`, field, direction, direction)

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDomain())
	}
	return docs, nil
}

// Update сохраняет метаданные документа, slug не меняется
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
        UPDATE documents
        SET title = $1,
            description = $2,
            is_public = $3,
            tags = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		doc.Title,
		doc.Description,
		doc.IsPublic,
		pq.Array(tags),
		doc.ID,
	).Scan(&doc.UpdatedAt)
	if err != nil {
		return wrapNotFound(err, "document")
	}
	return nil
}

// Delete удаляет документ со всеми зависимыми записями и возвращает ключи файлов всех версий
func (r *DocumentRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var keys []string
	err = tx.SelectContext(ctx, &keys, `
        SELECT file_key FROM document_versions WHERE document_id = $1
        UNION
        SELECT file_key FROM documents WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get version files: %w", err)
	}

	// Комментарии, версии, доступы и звезды удаляются каскадно
	result, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}
	if err := checkAffected(result, "document"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return keys, nil
}

func (r *DocumentRepository) SetStarred(ctx context.Context, userID, documentID int64, starred bool) error {
	var err error
	if starred {
		_, err = r.db.ExecContext(ctx, `
            INSERT INTO document_stars (user_id, document_id)
            VALUES ($1, $2)
            ON CONFLICT (user_id, document_id) DO NOTHING`, userID, documentID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM document_stars WHERE user_id = $1 AND document_id = $2`, userID, documentID)
	}
	if err != nil {
		return fmt.Errorf("failed to update star: %w", err)
	}
	return nil
}

// StarredIDs возвращает множество документов, отмеченных пользователем
func (r *DocumentRepository) StarredIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT document_id FROM document_stars WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get stars: %w", err)
	}

	starred := make(map[int64]bool, len(ids))
	for _, id := range ids {
		starred[id] = true
	}
	return starred, nil
}
