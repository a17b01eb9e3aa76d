package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/domain"
	"dochub/internal/service"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("register and login", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		user := env.register(t, "Alice@Example.com")
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

		tokens, err := env.auth.Login(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.Access)
		assert.NotEmpty(t, tokens.Refresh)

		me, err := env.auth.Me(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, me.LastLogin)
	})

	t.Run("register validation", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)

		cases := []service.RegisterRequest{
			{Email: "not-an-email", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass", FirstName: "A", LastName: "B"},
			{Email: "a@example.com", Password: "short", PasswordConfirm: "short", FirstName: "A", LastName: "B"},
			{Email: "a@example.com", Password: "s3cret-pass", PasswordConfirm: "other-pass", FirstName: "A", LastName: "B"},
			{Email: "a@example.com", Password: "s3cret-pass", PasswordConfirm: "s3cret-pass", LastName: "B"},
		}
		for _, req := range cases {
			_, err := env.auth.Register(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation, req)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		env.register(t, "bob@example.com")

		_, err := env.auth.Register(ctx, service.RegisterRequest{
			Email:           "BOB@example.com",
			Password:        "s3cret-pass",
			PasswordConfirm: "s3cret-pass",
			FirstName:       "Bob",
			LastName:        "Dup",
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		env.register(t, "carol@example.com")

		_, err := env.auth.Login(ctx, "carol@example.com", "wrong-pass")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.EqualError(t, err, "No active account found with the given credentials")

		_, err = env.auth.Login(ctx, "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("refresh and logout", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		env.register(t, "dave@example.com")

		tokens, err := env.auth.Login(ctx, "dave@example.com", "s3cret-pass")
		require.NoError(t, err)

		refreshed, err := env.auth.RefreshToken(ctx, tokens.Refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.Access)
		require.NoError(t, env.auth.VerifyToken(refreshed.Access))

		require.NoError(t, env.auth.Logout(ctx, tokens.Refresh))
		_, err = env.auth.RefreshToken(ctx, tokens.Refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("update profile", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		user := env.register(t, "erin@example.com")

		bio := "Writes documents"
		first := "Erin"
		updated, err := env.auth.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Bio: &bio, FirstName: &first})
		require.NoError(t, err)
		assert.Equal(t, "Writes documents", updated.Bio)
		assert.Equal(t, "Erin", updated.FirstName)
		assert.Equal(t, "User", updated.LastName)
		assert.Equal(t, "erin@example.com", updated.Email)
	})

	t.Run("change password", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		user := env.register(t, "frank@example.com")

		err := env.auth.ChangePassword(ctx, user.ID, service.ChangePasswordRequest{
			OldPassword:        "wrong-pass",
			NewPassword:        "new-secret-pass",
			NewPasswordConfirm: "new-secret-pass",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		err = env.auth.ChangePassword(ctx, user.ID, service.ChangePasswordRequest{
			OldPassword:        "s3cret-pass",
			NewPassword:        "new-secret-pass",
			NewPasswordConfirm: "new-secret-pass",
		})
		require.NoError(t, err)

		_, err = env.auth.Login(ctx, "frank@example.com", "new-secret-pass")
		assert.NoError(t, err)
	})

	t.Run("reset password", func(t *testing.T) {
		env := newTestEnv(t, 1<<20)
		user := env.register(t, "gina@example.com")

		assert.NoError(t, env.auth.ResetPassword(ctx, "unknown@example.com"))
		assert.NoError(t, env.auth.ResetPassword(ctx, "gina@example.com"))

		token, err := env.tokens.IssueReset(user)
		require.NoError(t, err)

		err = env.auth.ConfirmResetPassword(ctx, service.ResetConfirmRequest{
			Token:              token,
			NewPassword:        "reset-pass-123",
			NewPasswordConfirm: "reset-pass-123",
		})
		require.NoError(t, err)

		_, err = env.auth.Login(ctx, "gina@example.com", "reset-pass-123")
		assert.NoError(t, err)
	})
}
