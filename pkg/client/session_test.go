package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("login persists tokens and user", func(t *testing.T) {
		f := newFixture(t)

		user := f.session.User()
		require.NotNil(t, user)
		assert.Equal(t, mockOwnerEmail, user.Email)
		assert.True(t, f.session.IsAuthenticated())
		assert.False(t, f.session.IsLoading())

		for _, key := range sessionKeys {
			v, ok := f.tokens.Get(key)
			assert.True(t, ok, key)
			assert.NotEmpty(t, v, key)
		}

		raw, _ := f.tokens.Get(KeyUser)
		var persisted User
		require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
		assert.Equal(t, user.ID, persisted.ID)
		assert.Equal(t, "Login successful", f.notes[len(f.notes)-1].Title)
	})

	t.Run("bad credentials", func(t *testing.T) {
		tokens := NewMemoryTokenStore()
		backend, err := NewMockBackend(tokens, 0)
		require.NoError(t, err)
		session := NewSessionStore(backend, tokens, nil)

		_, err = session.Login(ctx, mockOwnerEmail, "wrong-password")
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.ErrorIs(t, session.LastError(), ErrAuthentication)
		assert.False(t, session.IsAuthenticated())

		_, ok := tokens.Get(KeyToken)
		assert.False(t, ok)
	})

	t.Run("update profile requires a user", func(t *testing.T) {
		tokens := NewMemoryTokenStore()
		backend, err := NewMockBackend(tokens, 0)
		require.NoError(t, err)
		session := NewSessionStore(backend, tokens, nil)

		bio := "hello"
		_, err = session.UpdateProfile(ctx, ProfileUpdate{Bio: &bio})
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("update profile", func(t *testing.T) {
		f := newFixture(t)

		name := "Johnny"
		user, err := f.session.UpdateProfile(ctx, ProfileUpdate{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Johnny", user.FirstName)
		assert.Equal(t, "Johnny", f.session.User().FirstName)
	})

	t.Run("change password", func(t *testing.T) {
		f := newFixture(t)

		err := f.session.ChangePassword(ctx, "wrong", "new-password-1", "new-password-1")
		assert.ErrorIs(t, err, ErrValidation)

		require.NoError(t, f.session.ChangePassword(ctx, MockPassword, "new-password-1", "new-password-1"))
		f.session.Logout(ctx)

		_, err = f.session.Login(ctx, mockOwnerEmail, "new-password-1")
		require.NoError(t, err)
	})

	t.Run("register logs in", func(t *testing.T) {
		tokens := NewMemoryTokenStore()
		backend, err := NewMockBackend(tokens, 0)
		require.NoError(t, err)
		session := NewSessionStore(backend, tokens, nil)

		user, err := session.Register(ctx, RegisterRequest{
			Email:           "alice@example.com",
			Password:        "alice-pass-1",
			PasswordConfirm: "alice-pass-1",
			FirstName:       "Alice",
			LastName:        "Jones",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.True(t, session.IsAuthenticated())

		_, err = session.Register(ctx, RegisterRequest{
			Email:           "bob@example.com",
			Password:        "bob-pass-1",
			PasswordConfirm: "other-pass",
			FirstName:       "Bob",
			LastName:        "Brown",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("logout never fails and clears state", func(t *testing.T) {
		f := newFixture(t)
		refresh, _ := f.tokens.Get(KeyRefreshToken)

		f.session.Logout(ctx)
		assert.False(t, f.session.IsAuthenticated())
		assert.Nil(t, f.session.User())
		for _, key := range sessionKeys {
			_, ok := f.tokens.Get(key)
			assert.False(t, ok, key)
		}

		assert.Error(t, f.backend.Logout(ctx, refresh), "refresh token is revoked")

		f.session.Logout(ctx)
	})

	t.Run("restore", func(t *testing.T) {
		f := newFixture(t)
		restored := NewSessionStore(f.backend, f.tokens, nil)

		require.NoError(t, restored.Restore(ctx))
		require.NotNil(t, restored.User())
		assert.Equal(t, mockOwnerEmail, restored.User().Email)
	})

	t.Run("restore with invalid token logs out", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.tokens.Set(KeyToken, "garbage"))
		restored := NewSessionStore(f.backend, f.tokens, nil)

		err := restored.Restore(ctx)
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.False(t, restored.IsAuthenticated())
		_, ok := f.tokens.Get(KeyRefreshToken)
		assert.False(t, ok)
	})

	t.Run("reset password", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.ResetPassword(ctx, "unknown@example.com"))
	})
}
