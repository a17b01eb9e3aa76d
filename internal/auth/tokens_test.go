package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/domain"
)

func newManager(accessTTL time.Duration) *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		Secret:     "test-secret",
		Issuer:     "dochub",
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
		ResetTTL:   time.Minute,
	}, auth.NewMemoryRevoker())
}

var alice = &domain.User{ID: 7, Email: "alice@example.com"}

func TestTokenManager(t *testing.T) {
	ctx := context.Background()

	t.Run("issue and parse pair", func(t *testing.T) {
		m := newManager(time.Minute)
		pair, err := m.IssuePair(alice)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)

		userID, err := m.ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, int64(7), userID)

		claims, err := m.ParseRefresh(ctx, pair.Refresh)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("token types are not interchangeable", func(t *testing.T) {
		m := newManager(time.Minute)
		pair, err := m.IssuePair(alice)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = m.ParseRefresh(ctx, pair.Access)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		reset, err := m.IssueReset(alice)
		require.NoError(t, err)
		_, err = m.ParseAccess(reset)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		userID, err := m.ParseReset(reset)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, userID)
	})

	t.Run("expired access token is rejected", func(t *testing.T) {
		m := newManager(-time.Minute)
		pair, err := m.IssuePair(alice)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Access)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := auth.NewTokenManager(config.AuthConfig{
			Secret: "other", Issuer: "dochub", AccessTTL: time.Minute, RefreshTTL: time.Hour,
		}, nil)
		pair, err := other.IssuePair(alice)
		require.NoError(t, err)

		_, err = newManager(time.Minute).ParseAccess(pair.Access)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("revoked refresh token is rejected", func(t *testing.T) {
		m := newManager(time.Minute)
		pair, err := m.IssuePair(alice)
		require.NoError(t, err)

		require.NoError(t, m.Revoke(ctx, pair.Refresh))
		_, err = m.ParseRefresh(ctx, pair.Refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		// access токен продолжает работать до истечения
		_, err = m.ParseAccess(pair.Access)
		assert.NoError(t, err)
	})
}

func TestVerifyToken(t *testing.T) {
	m := newManager(time.Minute)
	pair, err := m.IssuePair(alice)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		wantID int64
		ok     bool
	}{
		{"valid bearer", "Bearer " + pair.Access, alice.ID, true},
		{"lowercase scheme", "bearer " + pair.Access, alice.ID, true},
		{"missing header", "", 0, false},
		{"wrong scheme", "Basic abc", 0, false},
		{"garbage token", "Bearer not-a-token", 0, false},
		{"refresh token", "Bearer " + pair.Refresh, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/users/me/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			userID, err := m.VerifyToken(r)
			if !tt.ok {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				assert.Equal(t, 401, domain.StatusOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, userID)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, auth.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("not-a-hash", "s3cret-pass"))
}
