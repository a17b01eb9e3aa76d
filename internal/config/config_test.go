package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "10m")

	cfg, err := NewConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "50051", cfg.Server.GRPCPort)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, int64(defaultQuotaLimit), cfg.Quota.DefaultLimit)
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".app.env")
	content := "DATABASE_DRIVER=memory\nSTORAGE_DRIVER=memory\nJWT_SECRET=from-file\nHTTP_PORT=7000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "7001")

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Auth.Secret)
	// переменная окружения важнее файла
	assert.Equal(t, "7001", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	t.Run("incomplete postgres", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Driver: DriverPostgres, Host: "localhost"},
			Storage:  StorageConfig{Driver: DriverMemory},
			Auth:     AuthConfig{Secret: "s", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		}
		assert.ErrorContains(t, cfg.Validate(), "database configuration is incomplete")
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			Storage:  StorageConfig{Driver: DriverMemory},
			Auth:     AuthConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		}
		assert.ErrorContains(t, cfg.Validate(), "JWT secret is required")
	})

	t.Run("incomplete s3", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			Storage:  StorageConfig{Driver: DriverS3, Bucket: "docs"},
			Auth:     AuthConfig{Secret: "s", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		}
		assert.ErrorContains(t, cfg.Validate(), "storage configuration is incomplete")
	})
}

func TestDatabaseURLs(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "dochub", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=dochub sslmode=disable", db.GetDSN())
	assert.Equal(t, "postgres://u:p@db:5432/dochub?sslmode=disable", db.GetURL())
}
