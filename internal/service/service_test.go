package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/repository/memory"
	"dochub/internal/service"
	"dochub/internal/storage"
)

type testEnv struct {
	repos     service.Repositories
	storage   *storage.MemoryStorage
	tokens    *auth.TokenManager
	auth      *service.AuthService
	documents *service.DocumentService
	quota     *service.StorageQuotaService
}

func newTestEnv(t *testing.T, quotaLimit int64) *testEnv {
	t.Helper()

	db, err := memory.New(quotaLimit)
	require.NoError(t, err)

	repos := service.Repositories{
		Users:     memory.NewUserRepository(db),
		Documents: memory.NewDocumentRepository(db),
		Versions:  memory.NewVersionRepository(db),
		Comments:  memory.NewCommentRepository(db),
		Shares:    memory.NewShareRepository(db),
		Quotas:    memory.NewStorageQuotaRepository(db),
	}

	tokens := auth.NewTokenManager(config.AuthConfig{
		Secret:     "test-secret",
		Issuer:     "dochub",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		ResetTTL:   time.Minute,
	}, auth.NewMemoryRevoker())

	store := storage.NewMemoryStorage()
	quota := service.NewStorageQuotaService(repos.Quotas)
	permissions := service.NewPermissionService(repos.Shares)

	return &testEnv{
		repos:     repos,
		storage:   store,
		tokens:    tokens,
		auth:      service.NewAuthService(repos.Users, tokens),
		documents: service.NewDocumentService(repos, store, permissions, quota, "http://localhost:8000/api"),
		quota:     quota,
	}
}

func (e *testEnv) register(t *testing.T, email string) *domain.User {
	t.Helper()

	user, err := e.auth.Register(context.Background(), service.RegisterRequest{
		Email:           email,
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
		FirstName:       "Test",
		LastName:        "User",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) upload(t *testing.T, ownerID int64, title string, public bool, data string) *domain.Document {
	t.Helper()

	doc, err := e.documents.Create(context.Background(), ownerID, domain.DocumentUpload{
		Title:    title,
		IsPublic: public,
		Tags:     []string{"work"},
		FileName: "notes.TXT",
		Data:     []byte(data),
	})
	require.NoError(t, err)
	return doc
}
