package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, ModeHTTP, cfg.Mode)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.NotEmpty(t, cfg.TokenFile)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("DOCHUB_MODE", "MOCK")
		t.Setenv("DOCHUB_BASE_URL", "http://docs.internal/api/")
		t.Setenv("DOCHUB_MOCK_LATENCY", "10ms")

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, ModeMock, cfg.Mode)
		assert.Equal(t, "http://docs.internal/api", cfg.BaseURL)
		assert.Equal(t, 10*time.Millisecond, cfg.MockLatency)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mode: mock\ntimeout: 5s\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, ModeMock, cfg.Mode)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, ModeHTTP, cfg.Mode)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Setenv("DOCHUB_MODE", "grpc")

		_, err := LoadConfig("")
		assert.Error(t, err)
	})
}
