package repository

import (
	"context"
	"dochub/internal/domain"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type VersionRepository struct {
	db *sqlx.DB
}

func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

type versionRow struct {
	domain.Version
	CreatorEmail          string  `db:"creator_email"`
	CreatorFirstName      string  `db:"creator_first_name"`
	CreatorLastName       string  `db:"creator_last_name"`
	CreatorProfilePicture *string `db:"creator_profile_picture"`
}

func (row versionRow) toDomain() domain.Version {
	v := row.Version
	if v.CreatedByID != nil {
		v.CreatedBy = summaryOf(*v.CreatedByID, row.CreatorEmail, row.CreatorFirstName, row.CreatorLastName, row.CreatorProfilePicture)
	}
	return v
}

// Add создает следующую версию документа и обновляет файл документа в одной транзакции.
// fileType пустой, если тип файла не изменился.
func (r *VersionRepository) Add(ctx context.Context, version *domain.Version, fileType string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем документ, чтобы номера версий не пересекались
	var current int
	err = tx.GetContext(ctx, &current,
		`SELECT current_version FROM documents WHERE id = $1 FOR UPDATE`, version.DocumentID)
	if err != nil {
		return wrapNotFound(err, "document")
	}

	var latest int
	err = tx.GetContext(ctx, &latest,
		`SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id = $1`, version.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get latest version: %w", err)
	}
	version.VersionNumber = latest + 1

	insertQuery := `
        INSERT INTO document_versions (document_id, version_number, file_key, file_size, comment, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		version.DocumentID,
		version.VersionNumber,
		version.FileKey,
		version.FileSize,
		version.Comment,
		version.CreatedByID,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	// Документ всегда отражает последнюю версию
	updateQuery := `
        UPDATE documents
        SET current_version = $1,
            file_key = $2,
            file_size = $3,
            file_type = COALESCE(NULLIF($4::text, ''), file_type),
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5`

	_, err = tx.ExecContext(ctx, updateQuery,
		version.VersionNumber,
		version.FileKey,
		version.FileSize,
		fileType,
		version.DocumentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByDocument возвращает версии документа, новые первыми
func (r *VersionRepository) ListByDocument(ctx context.Context, documentID int64) ([]domain.Version, error) {
	query := `
        SELECT
            v.id, v.document_id, v.version_number, v.file_key, v.file_size,
            v.comment, v.created_by, v.created_at,
            COALESCE(u.email, '') AS creator_email,
            COALESCE(u.first_name, '') AS creator_first_name,
            COALESCE(u.last_name, '') AS creator_last_name,
            u.profile_picture AS creator_profile_picture
        FROM document_versions v
        LEFT JOIN users u ON u.id = v.created_by
        WHERE v.document_id = $1
        ORDER BY v.version_number DESC`

	var rows []versionRow
	if err := r.db.SelectContext(ctx, &rows, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to get document versions: %w", err)
	}

	versions := make([]domain.Version, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, row.toDomain())
	}
	return versions, nil
}
