package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverS3       = "s3"

	defaultQuotaLimit = 5 * 1024 * 1024 * 1024 // 5GB
)

type Config struct {
	Server   ServerConfig   `mapstructure:"Server"`
	Database DatabaseConfig `mapstructure:"Database"`
	Storage  StorageConfig  `mapstructure:"Storage"`
	Auth     AuthConfig     `mapstructure:"Auth"`
	Redis    RedisConfig    `mapstructure:"Redis"`
	Quota    QuotaConfig    `mapstructure:"Quota"`
	Log      LogConfig      `mapstructure:"Log"`
}

type ServerConfig struct {
	Port     string `mapstructure:"Port"`
	BaseURL  string `mapstructure:"BaseURL"`
	GRPCPort string `mapstructure:"GRPCPort"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"Driver"`
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

type StorageConfig struct {
	Driver          string `mapstructure:"Driver"`
	Endpoint        string `mapstructure:"Endpoint"`
	Region          string `mapstructure:"Region"`
	AccessKeyID     string `mapstructure:"AccessKeyID"`
	SecretAccessKey string `mapstructure:"SecretAccessKey"`
	Bucket          string `mapstructure:"Bucket"`
}

type AuthConfig struct {
	Secret     string        `mapstructure:"Secret"`
	Issuer     string        `mapstructure:"Issuer"`
	AccessTTL  time.Duration `mapstructure:"AccessTTL"`
	RefreshTTL time.Duration `mapstructure:"RefreshTTL"`
	ResetTTL   time.Duration `mapstructure:"ResetTTL"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"Addr"`
	Password string `mapstructure:"Password"`
	DB       int    `mapstructure:"DB"`
}

type QuotaConfig struct {
	DefaultLimit int64 `mapstructure:"DefaultLimit"`
}

type LogConfig struct {
	Level string `mapstructure:"Level"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	// Файл конфигурации в формате KEY=VALUE
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Привязываем переменные окружения
	bindings := map[string]string{
		"Server.Port":             "HTTP_PORT",
		"Server.GRPCPort":         "GRPC_PORT",
		"Server.BaseURL":          "BASE_URL",
		"Database.Driver":         "DATABASE_DRIVER",
		"Database.Host":           "DATABASE_HOST",
		"Database.Port":           "DATABASE_PORT",
		"Database.User":           "DATABASE_USER",
		"Database.Password":       "DATABASE_PASSWORD",
		"Database.Name":           "DATABASE_NAME",
		"Database.SSLMode":        "DATABASE_SSLMODE",
		"Storage.Driver":          "STORAGE_DRIVER",
		"Storage.Endpoint":        "S3_ENDPOINT",
		"Storage.Region":          "S3_REGION",
		"Storage.AccessKeyID":     "S3_ACCESS_KEY_ID",
		"Storage.SecretAccessKey": "S3_SECRET_ACCESS_KEY",
		"Storage.Bucket":          "S3_BUCKET",
		"Auth.Secret":             "JWT_SECRET",
		"Auth.Issuer":             "JWT_ISSUER",
		"Auth.AccessTTL":          "JWT_ACCESS_TTL",
		"Auth.RefreshTTL":         "JWT_REFRESH_TTL",
		"Auth.ResetTTL":           "JWT_RESET_TTL",
		"Redis.Addr":              "REDIS_ADDR",
		"Redis.Password":          "REDIS_PASSWORD",
		"Redis.DB":                "REDIS_DB",
		"Quota.DefaultLimit":      "QUOTA_DEFAULT_LIMIT",
		"Log.Level":               "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// Значения по умолчанию
	v.SetDefault("Server.Port", "8000")
	v.SetDefault("Server.GRPCPort", "50051")
	v.SetDefault("Database.Driver", DriverPostgres)
	v.SetDefault("Database.SSLMode", "disable")
	v.SetDefault("Storage.Driver", DriverS3)
	v.SetDefault("Storage.Region", "us-east-1")
	v.SetDefault("Auth.Issuer", "dochub")
	v.SetDefault("Auth.AccessTTL", 5*time.Minute)
	v.SetDefault("Auth.RefreshTTL", 24*time.Hour)
	v.SetDefault("Auth.ResetTTL", 30*time.Minute)
	v.SetDefault("Quota.DefaultLimit", int64(defaultQuotaLimit))
	v.SetDefault("Log.Level", "info")

	// Читаем конфигурацию из файла, если он есть
	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: using only environment variables: %v", err)
	} else {
		// В .env файле ключи плоские (HTTP_PORT=...), переносим их в секции.
		// Переменные окружения имеют приоритет над файлом.
		for key, env := range bindings {
			if _, ok := os.LookupEnv(env); ok {
				continue
			}
			if v.InConfig(strings.ToLower(env)) {
				v.Set(key, v.Get(env))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет, что все необходимые поля заполнены
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" ||
			c.Database.Port == "" ||
			c.Database.User == "" ||
			c.Database.Password == "" ||
			c.Database.Name == "" {
			return fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
				c.Database.Host, c.Database.Port, c.Database.User, c.Database.Name)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case DriverS3:
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("storage configuration is incomplete: accessKeyID, secretAccessKey, and bucket are required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}

	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

// GetURL возвращает адрес базы в формате, который понимает golang-migrate
func (c *DatabaseConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}
