package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeHTTP = "http"
	ModeMock = "mock"

	DefaultBaseURL = "http://localhost:8000/api"
)

type Config struct {
	Mode        string        `mapstructure:"Mode"`
	BaseURL     string        `mapstructure:"BaseURL"`
	TokenFile   string        `mapstructure:"TokenFile"`
	Timeout     time.Duration `mapstructure:"Timeout"`
	MockLatency time.Duration `mapstructure:"MockLatency"`
}

// LoadConfig читает настройки клиента из файла (если path не пустой)
// и переменных окружения DOCHUB_MODE, DOCHUB_BASE_URL и т.д.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCHUB")

	bindings := map[string]string{
		"Mode":        "MODE",
		"BaseURL":     "BASE_URL",
		"TokenFile":   "TOKEN_FILE",
		"Timeout":     "TIMEOUT",
		"MockLatency": "MOCK_LATENCY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "DOCHUB_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	v.SetDefault("Mode", ModeHTTP)
	v.SetDefault("BaseURL", DefaultBaseURL)
	v.SetDefault("TokenFile", defaultTokenFile())
	v.SetDefault("Timeout", 30*time.Second)
	v.SetDefault("MockLatency", 500*time.Millisecond)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read client config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required in %s mode", ModeHTTP)
		}
	case ModeMock:
	default:
		return fmt.Errorf("unsupported client mode: %s", c.Mode)
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout < 0 || c.MockLatency < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".dochub-session.json"
	}
	return filepath.Join(dir, "dochub", "session.json")
}
