package repository

import (
	"context"
	"dochub/internal/domain"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

type shareRow struct {
	domain.Share
	UserEmail          string  `db:"user_email"`
	UserFirstName      string  `db:"user_first_name"`
	UserLastName       string  `db:"user_last_name"`
	UserProfilePicture *string `db:"user_profile_picture"`
}

func (row shareRow) toDomain() domain.Share {
	s := row.Share
	s.SharedWith = summaryOf(s.SharedWithID, row.UserEmail, row.UserFirstName, row.UserLastName, row.UserProfilePicture)
	return s
}

const shareSelect = `
    SELECT
        s.id, s.document_id, s.shared_with, s.permission, s.created_at,
        u.email AS user_email,
        u.first_name AS user_first_name,
        u.last_name AS user_last_name,
        u.profile_picture AS user_profile_picture
    FROM shared_documents s
    JOIN users u ON u.id = s.shared_with`

// Upsert выдает доступ или меняет право, если доступ уже есть
func (r *ShareRepository) Upsert(ctx context.Context, share *domain.Share) error {
	query := `
        INSERT INTO shared_documents (document_id, shared_with, permission)
        VALUES ($1, $2, $3)
        ON CONFLICT (document_id, shared_with)
        DO UPDATE SET permission = EXCLUDED.permission
        RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		share.DocumentID,
		share.SharedWithID,
		share.Permission,
	).Scan(&share.ID, &share.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to share document: %w", err)
	}
	return nil
}

func (r *ShareRepository) GetByID(ctx context.Context, id int64) (*domain.Share, error) {
	var row shareRow
	if err := r.db.GetContext(ctx, &row, shareSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, wrapNotFound(err, "share")
	}
	share := row.toDomain()
	return &share, nil
}

// GetForUser возвращает доступ пользователя к документу
func (r *ShareRepository) GetForUser(ctx context.Context, documentID, userID int64) (*domain.Share, error) {
	var row shareRow
	query := shareSelect + ` WHERE s.document_id = $1 AND s.shared_with = $2`
	if err := r.db.GetContext(ctx, &row, query, documentID, userID); err != nil {
		return nil, wrapNotFound(err, "share")
	}
	share := row.toDomain()
	return &share, nil
}

func (r *ShareRepository) ListByDocument(ctx context.Context, documentID int64) ([]domain.Share, error) {
	var rows []shareRow
	query := shareSelect + ` WHERE s.document_id = $1 ORDER BY s.created_at DESC, s.id DESC`
	if err := r.db.SelectContext(ctx, &rows, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}

	shares := make([]domain.Share, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, row.toDomain())
	}
	return shares, nil
}

func (r *ShareRepository) UpdatePermission(ctx context.Context, id int64, permission domain.Permission) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shared_documents SET permission = $1 WHERE id = $2`, permission, id)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}
	return checkAffected(result, "share")
}

func (r *ShareRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shared_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return checkAffected(result, "share")
}
