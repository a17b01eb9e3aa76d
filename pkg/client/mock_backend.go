package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/repository/memory"
	"dochub/internal/service"
	"dochub/internal/storage"
)

const (
	mockSecret     = "dochub-mock-secret"
	mockQuota      = 1 << 30 // 1GB
	mockBaseURL    = "mock://dochub/api"
	MockPassword   = "password123"
	mockOwnerEmail = "john@example.com"
	mockPeerEmail  = "jane@example.com"
)

// MockBackend - встроенный сервер на памяти с набором фикстур.
// Правила (slug, нумерация версий, доступы, избранное) те же, что у API.
type MockBackend struct {
	latency   time.Duration
	tokens    TokenStore
	manager   *auth.TokenManager
	auth      *service.AuthService
	documents *service.DocumentService
	quota     *service.StorageQuotaService
}

// NewMockBackend создает фикстуры: пользователей john@example.com и
// jane@example.com (пароль MockPassword) и несколько документов.
func NewMockBackend(tokens TokenStore, latency time.Duration) (*MockBackend, error) {
	db, err := memory.New(mockQuota)
	if err != nil {
		return nil, fmt.Errorf("failed to create mock database: %w", err)
	}

	repos := service.Repositories{
		Users:     memory.NewUserRepository(db),
		Documents: memory.NewDocumentRepository(db),
		Versions:  memory.NewVersionRepository(db),
		Comments:  memory.NewCommentRepository(db),
		Shares:    memory.NewShareRepository(db),
		Quotas:    memory.NewStorageQuotaRepository(db),
	}

	manager := auth.NewTokenManager(config.AuthConfig{
		Secret:     mockSecret,
		Issuer:     "dochub-mock",
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
		ResetTTL:   time.Hour,
	}, auth.NewMemoryRevoker())

	quota := service.NewStorageQuotaService(repos.Quotas)
	b := &MockBackend{
		latency:   latency,
		tokens:    tokens,
		manager:   manager,
		auth:      service.NewAuthService(repos.Users, manager),
		documents: service.NewDocumentService(repos, storage.NewMemoryStorage(), service.NewPermissionService(repos.Shares), quota, mockBaseURL),
		quota:     quota,
	}

	if err := b.seed(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to seed mock data: %w", err)
	}
	return b, nil
}

func (b *MockBackend) seed(ctx context.Context) error {
	john, err := b.auth.Register(ctx, service.RegisterRequest{
		Email: mockOwnerEmail, Password: MockPassword, PasswordConfirm: MockPassword,
		FirstName: "John", LastName: "Doe",
	})
	if err != nil {
		return err
	}
	jane, err := b.auth.Register(ctx, service.RegisterRequest{
		Email: mockPeerEmail, Password: MockPassword, PasswordConfirm: MockPassword,
		FirstName: "Jane", LastName: "Smith",
	})
	if err != nil {
		return err
	}

	notes, err := b.documents.Create(ctx, john.ID, domain.DocumentUpload{
		Title:       "Meeting Notes",
		Description: "Weekly team sync summary",
		Tags:        []string{"meeting", "team"},
		FileName:    "meeting-notes.pdf",
		Data:        fixtureBytes(240 << 10),
	})
	if err != nil {
		return err
	}
	_, err = b.documents.AddVersion(ctx, john.ID, notes.Slug, domain.VersionUpload{
		FileName: "meeting-notes.pdf",
		Data:     fixtureBytes(250 << 10),
		Comment:  "Added action items",
	})
	if err != nil {
		return err
	}
	_, err = b.documents.Share(ctx, john.ID, notes.Slug, service.ShareRequest{
		SharedWith: jane.ID,
		Permission: domain.PermissionView,
	})
	if err != nil {
		return err
	}

	proposal, err := b.documents.Create(ctx, john.ID, domain.DocumentUpload{
		Title:       "Project Proposal",
		Description: "Scope and budget for the Q3 roadmap",
		Tags:        []string{"project", "planning"},
		FileName:    "project-proposal.docx",
		Data:        fixtureBytes(1 << 20),
	})
	if err != nil {
		return err
	}
	if _, err := b.documents.ToggleStar(ctx, john.ID, proposal.Slug); err != nil {
		return err
	}

	guidelines, err := b.documents.Create(ctx, jane.ID, domain.DocumentUpload{
		Title:       "Design Guidelines",
		Description: "Brand colors and typography",
		IsPublic:    true,
		Tags:        []string{"design"},
		FileName:    "design-guidelines.png",
		Data:        fixtureBytes(512 << 10),
	})
	if err != nil {
		return err
	}
	_, err = b.documents.Share(ctx, jane.ID, guidelines.Slug, service.ShareRequest{
		SharedWith: john.ID,
		Permission: domain.PermissionComment,
	})
	return err
}

func fixtureBytes(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	return data
}

// wait имитирует сетевую задержку и прерывается по ctx
func (b *MockBackend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// caller ждет задержку и определяет пользователя по сохраненному токену
func (b *MockBackend) caller(ctx context.Context) (int64, error) {
	if err := b.wait(ctx); err != nil {
		return 0, err
	}

	token, ok := b.tokens.Get(KeyToken)
	if !ok || token == "" {
		return 0, &APIError{Status: http.StatusUnauthorized, Detail: "Authentication credentials were not provided."}
	}
	userID, err := b.manager.ParseAccess(token)
	if err != nil {
		return 0, asAPIError(err)
	}
	return userID, nil
}

func (b *MockBackend) Login(ctx context.Context, email, password string) (AuthTokens, error) {
	if err := b.wait(ctx); err != nil {
		return AuthTokens{}, err
	}
	tokens, err := b.auth.Login(ctx, email, password)
	return tokens, asAPIError(err)
}

func (b *MockBackend) Logout(ctx context.Context, refresh string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	return asAPIError(b.auth.Logout(ctx, refresh))
}

func (b *MockBackend) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	user, err := b.auth.Register(ctx, req)
	return user, asAPIError(err)
}

func (b *MockBackend) Me(ctx context.Context) (*User, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := b.auth.Me(ctx, userID)
	return user, asAPIError(err)
}

func (b *MockBackend) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := b.auth.UpdateProfile(ctx, userID, update)
	return user, asAPIError(err)
}

func (b *MockBackend) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	userID, err := b.caller(ctx)
	if err != nil {
		return err
	}
	return asAPIError(b.auth.ChangePassword(ctx, userID, req))
}

func (b *MockBackend) ResetPassword(ctx context.Context, email string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	return asAPIError(b.auth.ResetPassword(ctx, email))
}

func (b *MockBackend) ListDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, opts, b.documents.List)
}

func (b *MockBackend) MyDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, opts, b.documents.MyDocuments)
}

func (b *MockBackend) SharedWithMe(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, opts, b.documents.SharedWithMe)
}

func (b *MockBackend) StarredDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, opts, b.documents.Starred)
}

func (b *MockBackend) list(
	ctx context.Context,
	opts ListOptions,
	fetch func(context.Context, int64, domain.ListOptions) ([]domain.Document, error),
) ([]Document, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := fetch(ctx, userID, opts)
	return docs, asAPIError(err)
}

func (b *MockBackend) GetDocument(ctx context.Context, slug string) (*DocumentDetail, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	detail, err := b.documents.GetBySlug(ctx, userID, slug)
	return detail, asAPIError(err)
}

func (b *MockBackend) GetDocumentByID(ctx context.Context, id int64) (*DocumentDetail, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	detail, err := b.documents.GetByID(ctx, userID, id)
	return detail, asAPIError(err)
}

func (b *MockBackend) CreateDocument(ctx context.Context, upload Upload) (*Document, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := b.documents.Create(ctx, userID, upload)
	return doc, asAPIError(err)
}

func (b *MockBackend) UpdateDocument(ctx context.Context, slug string, update DocumentUpdate) (*Document, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := b.documents.Update(ctx, userID, slug, update)
	return doc, asAPIError(err)
}

func (b *MockBackend) DeleteDocument(ctx context.Context, slug string) error {
	userID, err := b.caller(ctx)
	if err != nil {
		return err
	}
	return asAPIError(b.documents.Delete(ctx, userID, slug))
}

func (b *MockBackend) ToggleStar(ctx context.Context, slug string) (*Document, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := b.documents.ToggleStar(ctx, userID, slug)
	return doc, asAPIError(err)
}

func (b *MockBackend) AddComment(ctx context.Context, documentID int64, content string) (*Comment, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := b.documents.AddComment(ctx, userID, service.CommentRequest{
		DocumentID: documentID,
		Content:    content,
	})
	return comment, asAPIError(err)
}

func (b *MockBackend) DeleteComment(ctx context.Context, id int64) error {
	userID, err := b.caller(ctx)
	if err != nil {
		return err
	}
	return asAPIError(b.documents.DeleteComment(ctx, userID, id))
}

func (b *MockBackend) AddVersion(ctx context.Context, slug string, upload VersionUpload) (*Version, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	version, err := b.documents.AddVersion(ctx, userID, slug, upload)
	return version, asAPIError(err)
}

func (b *MockBackend) Share(ctx context.Context, slug string, userID int64, permission Permission) (*Share, error) {
	ownerID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	share, err := b.documents.Share(ctx, ownerID, slug, service.ShareRequest{
		SharedWith: userID,
		Permission: permission,
	})
	return share, asAPIError(err)
}

func (b *MockBackend) GetShare(ctx context.Context, id int64) (*Share, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	share, err := b.documents.GetShare(ctx, userID, id)
	return share, asAPIError(err)
}

func (b *MockBackend) RemoveShare(ctx context.Context, id int64) error {
	userID, err := b.caller(ctx)
	if err != nil {
		return err
	}
	return asAPIError(b.documents.RemoveShare(ctx, userID, id))
}

func (b *MockBackend) Quota(ctx context.Context) (*QuotaInfo, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	info, err := b.quota.GetQuotaInfo(ctx, userID)
	return info, asAPIError(err)
}
