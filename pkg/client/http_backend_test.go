package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/handler"
	"dochub/internal/preview"
	"dochub/internal/repository/memory"
	"dochub/internal/service"
	"dochub/internal/storage"
)

// newAPIServer поднимает настоящий REST API на памяти
func newAPIServer(t *testing.T, accessTTL time.Duration) *httptest.Server {
	t.Helper()

	db, err := memory.New(1 << 20)
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
		Secret:     "client-test-secret",
		Issuer:     "dochub",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
		ResetTTL:   time.Minute,
	}, auth.NewMemoryRevoker())

	store := storage.NewMemoryStorage()
	quota := service.NewStorageQuotaService(repos.Quotas)
	documents := service.NewDocumentService(repos, store, service.NewPermissionService(repos.Shares), quota, "http://testserver/api")

	router := handler.NewRouter(handler.Services{
		Auth:      service.NewAuthService(repos.Users, tokens),
		Documents: documents,
		Quota:     quota,
		Preview: preview.NewService(documents, store, func(data []byte) ([]byte, error) {
			return data, nil
		}),
		Tokens: tokens,
	}, nil, 0)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newHTTPClientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	c, err := New(Config{
		Mode:    ModeHTTP,
		BaseURL: srv.URL + "/api",
		Timeout: 5 * time.Second,
	}, WithTokenStore(NewMemoryTokenStore()))
	require.NoError(t, err)
	return c
}

func register(t *testing.T, c *Client, email string) *User {
	t.Helper()

	user, err := c.Session.Register(context.Background(), RegisterRequest{
		Email:           email,
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
		FirstName:       "Test",
		LastName:        "User",
	})
	require.NoError(t, err)
	return user
}

func TestHTTPBackendEndToEnd(t *testing.T) {
	srv := newAPIServer(t, time.Minute)
	ctx := context.Background()

	owner := newHTTPClientFor(t, srv)
	register(t, owner, "owner@example.com")
	peer := newHTTPClientFor(t, srv)
	peerUser := register(t, peer, "peer@example.com")

	doc, err := owner.Documents.Create(ctx, Upload{
		Title:       "Meeting Notes",
		Description: "Weekly sync",
		Tags:        []string{"meeting", "team"},
		FileName:    "notes.txt",
		Data:        []byte("first"),
	})
	require.NoError(t, err)
	assert.Equal(t, "meeting-notes", doc.Slug)
	assert.ElementsMatch(t, []string{"meeting", "team"}, doc.Tags)

	_, err = owner.Documents.FetchBySlug(ctx, doc.Slug)
	require.NoError(t, err)

	version, err := owner.Documents.AddVersion(ctx, doc.Slug, VersionUpload{
		FileName: "notes.txt",
		Data:     []byte("second revision"),
		Comment:  "update",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, version.VersionNumber)
	assert.Equal(t, 2, owner.Documents.Current().VersionCount)

	share, err := owner.Documents.Share(ctx, doc.Slug, peerUser.ID, PermissionComment)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.Documents.Current().ShareCount)

	shared, err := peer.Documents.FetchShared(ctx)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, doc.ID, shared[0].ID)

	_, err = peer.Documents.AddComment(ctx, doc.ID, "Looks good")
	require.NoError(t, err)

	_, err = peer.Documents.Update(ctx, doc.Slug, DocumentUpdate{Title: ptr("Hijacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	starred, err := peer.Documents.ToggleStar(ctx, doc.Slug)
	require.NoError(t, err)
	assert.True(t, starred.IsStarred)

	fetched, err := owner.Backend.GetShare(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, fetched.DocumentID)

	_, err = peer.Backend.GetShare(ctx, share.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, owner.Documents.RemoveShare(ctx, share.ID))
	assert.Equal(t, 0, owner.Documents.Current().ShareCount)

	_, err = peer.Documents.FetchBySlug(ctx, doc.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	info, err := owner.Backend.Quota(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len("second revision")), info.UsedSpace)

	require.NoError(t, owner.Documents.Delete(ctx, doc.Slug))
	assert.Empty(t, owner.Documents.Owned())
}

func TestHTTPBackendSessionExpiry(t *testing.T) {
	srv := newAPIServer(t, time.Minute)
	ctx := context.Background()

	c := newHTTPClientFor(t, srv)
	register(t, c, "owner@example.com")

	t.Run("stale access token is refreshed", func(t *testing.T) {
		require.NoError(t, c.Tokens.Set(KeyToken, "stale"))

		docs, err := c.Documents.FetchOwned(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		access, _ := c.Tokens.Get(KeyToken)
		assert.NotEqual(t, "stale", access)
	})

	t.Run("revoked refresh token ends the session", func(t *testing.T) {
		refresh, _ := c.Tokens.Get(KeyRefreshToken)
		require.NoError(t, c.Backend.Logout(ctx, refresh))
		require.NoError(t, c.Tokens.Set(KeyToken, "stale"))

		_, err := c.Documents.FetchOwned(ctx)
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.False(t, c.Session.IsAuthenticated())
		_, ok := c.Tokens.Get(KeyRefreshToken)
		assert.False(t, ok)
	})
}

func ptr[T any](v T) *T { return &v }
