package service

import (
	"context"

	"dochub/internal/domain"
)

// Интерфейсы хранилища. Реализации: internal/repository (postgres) и internal/repository/memory.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document, first *domain.Version) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Document, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListVisible(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error)
	ListOwned(ctx context.Context, ownerID int64, opts domain.ListOptions) ([]domain.Document, error)
	ListSharedWith(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error)
	ListStarred(ctx context.Context, userID int64, opts domain.ListOptions) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id int64) ([]string, error)
	SetStarred(ctx context.Context, userID, documentID int64, starred bool) error
	StarredIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type VersionRepository interface {
	Add(ctx context.Context, version *domain.Version, fileType string) error
	ListByDocument(ctx context.Context, documentID int64) ([]domain.Version, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByDocument(ctx context.Context, documentID int64) ([]domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

type ShareRepository interface {
	Upsert(ctx context.Context, share *domain.Share) error
	GetByID(ctx context.Context, id int64) (*domain.Share, error)
	GetForUser(ctx context.Context, documentID, userID int64) (*domain.Share, error)
	ListByDocument(ctx context.Context, documentID int64) ([]domain.Share, error)
	UpdatePermission(ctx context.Context, id int64, permission domain.Permission) error
	Delete(ctx context.Context, id int64) error
}

type StorageQuotaRepository interface {
	GetQuota(ctx context.Context, ownerID int64) (*domain.StorageQuota, error)
	CalculateAndUpdateUsedSpace(ctx context.Context, ownerID int64) (int64, error)
}

// Repositories - набор репозиториев одного драйвера
type Repositories struct {
	Users     UserRepository
	Documents DocumentRepository
	Versions  VersionRepository
	Comments  CommentRepository
	Shares    ShareRepository
	Quotas    StorageQuotaRepository
}
