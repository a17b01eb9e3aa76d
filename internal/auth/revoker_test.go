package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/auth"
)

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close() //nolint:errcheck

	ctx := context.Background()
	revoker := auth.NewRedisRevoker(client)

	revoked, err := revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("dochub:revoked:jti-1"))

	// запись пропадает вместе с истечением токена
	mr.FastForward(2 * time.Minute)
	revoked, err = revoker.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// уже истекший токен не записывается
	require.NoError(t, revoker.Revoke(ctx, "jti-2", 0))
	assert.False(t, mr.Exists("dochub:revoked:jti-2"))
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	revoker := auth.NewMemoryRevoker()

	require.NoError(t, revoker.Revoke(ctx, "a", time.Hour))
	require.NoError(t, revoker.Revoke(ctx, "b", time.Nanosecond))
	time.Sleep(time.Millisecond)

	revoked, err := revoker.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = revoker.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)
}
