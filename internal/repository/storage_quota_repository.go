package repository

import (
	"context"
	"database/sql"
	"dochub/internal/domain"
	"dochub/internal/logging"
	"errors"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type StorageQuotaRepository struct {
	db           *sqlx.DB
	defaultLimit int64
	logger       logging.Logger
}

func NewStorageQuotaRepository(db *sqlx.DB, defaultLimit int64) *StorageQuotaRepository {
	return &StorageQuotaRepository{
		db:           db,
		defaultLimit: defaultLimit,
		logger:       logging.New("quota-repository"),
	}
}

func (r *StorageQuotaRepository) GetQuota(ctx context.Context, ownerID int64) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		`SELECT * FROM storage_quotas WHERE owner_id = $1`,
		ownerID)

	if err != nil {
		// Если квота не найдена, создаем новую с дефолтным лимитом
		if errors.Is(err, sql.ErrNoRows) {
			quota = domain.StorageQuota{
				OwnerID:         ownerID,
				TotalBytesLimit: r.defaultLimit,
				UsedBytes:       0,
			}

			if err := r.Create(ctx, &quota); err != nil {
				return nil, fmt.Errorf("failed to create quota: %w", err)
			}
			return &quota, nil
		}
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	return &quota, nil
}

func (r *StorageQuotaRepository) Create(ctx context.Context, quota *domain.StorageQuota) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
        RETURNING id, total_bytes_limit, used_bytes, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		quota.OwnerID,
		quota.TotalBytesLimit,
		quota.UsedBytes,
	).Scan(&quota.ID, &quota.TotalBytesLimit, &quota.UsedBytes, &quota.CreatedAt, &quota.UpdatedAt)
}

// CalculateAndUpdateUsedSpace пересчитывает занятое место как сумму размеров текущих версий документов владельца
func (r *StorageQuotaRepository) CalculateAndUpdateUsedSpace(ctx context.Context, ownerID int64) (int64, error) {
	// Квота создается при первом обращении
	if _, err := r.GetQuota(ctx, ownerID); err != nil {
		return 0, err
	}

	query := `
        UPDATE storage_quotas sq
        SET used_bytes = (
                SELECT COALESCE(SUM(d.file_size), 0)
                FROM documents d
                WHERE d.owner_id = $1
            ),
            updated_at = CURRENT_TIMESTAMP
        WHERE sq.owner_id = $1
        RETURNING used_bytes`

	var used int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&used); err != nil {
		r.logger.Errorf("[QuotaRepository] Failed to recalculate used space for user %d: %v", ownerID, err)
		return 0, fmt.Errorf("failed to update used space: %w", err)
	}

	r.logger.Debugf("[QuotaRepository] User %d uses %d bytes", ownerID, used)
	return used, nil
}
