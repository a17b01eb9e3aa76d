package service

import (
	"context"
	"dochub/internal/domain"
	"fmt"
)

type StorageQuotaService struct {
	quotaRepo StorageQuotaRepository
}

func NewStorageQuotaService(quotaRepo StorageQuotaRepository) *StorageQuotaService {
	return &StorageQuotaService{
		quotaRepo: quotaRepo,
	}
}

func (s *StorageQuotaService) GetQuotaInfo(ctx context.Context, ownerID int64) (*domain.QuotaInfo, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	availableSpace := max(quota.TotalBytesLimit-quota.UsedBytes, 0)
	var usagePercent float64
	if quota.TotalBytesLimit > 0 {
		usagePercent = float64(quota.UsedBytes) / float64(quota.TotalBytesLimit) * 100
	}

	return &domain.QuotaInfo{
		TotalSpace:     quota.TotalBytesLimit,
		UsedSpace:      quota.UsedBytes,
		AvailableSpace: availableSpace,
		UsagePercent:   usagePercent,
	}, nil
}

// CheckSpaceAvailable проверяет, поместятся ли еще requiredBytes.
// replacedBytes - размер файла, который будет заменен (текущая версия документа).
func (s *StorageQuotaService) CheckSpaceAvailable(ctx context.Context, ownerID int64, requiredBytes, replacedBytes int64) (bool, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to get quota: %w", err)
	}

	return (quota.UsedBytes - replacedBytes + requiredBytes) <= quota.TotalBytesLimit, nil
}

// UpdateUsedSpace пересчитывает занятое место владельца
func (s *StorageQuotaService) UpdateUsedSpace(ctx context.Context, ownerID int64) error {
	_, err := s.quotaRepo.CalculateAndUpdateUsedSpace(ctx, ownerID)
	return err
}
