package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"dochub/internal/auth"
	"dochub/internal/config"
	"dochub/internal/handler"
	"dochub/internal/logging"
	"dochub/internal/preview"
	"dochub/internal/repository"
	"dochub/internal/repository/memory"
	"dochub/internal/service"
	"dochub/internal/storage"
)

const requestTimeout = 5 * time.Minute

var log = logging.DefaultLogger()

func connectWithRetry(dsn string, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Warnf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", cfg.Database.GetURL())
		if err == nil {
			break
		}
		log.Warnf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Warnf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// openRepositories подключает выбранный драйвер базы. closer закрывает соединение.
func openRepositories(cfg *config.Config) (service.Repositories, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		db, err := memory.New(cfg.Quota.DefaultLimit)
		if err != nil {
			return service.Repositories{}, nil, err
		}
		log.Infof("Using in-memory database")
		return service.Repositories{
			Users:     memory.NewUserRepository(db),
			Documents: memory.NewDocumentRepository(db),
			Versions:  memory.NewVersionRepository(db),
			Comments:  memory.NewCommentRepository(db),
			Shares:    memory.NewShareRepository(db),
			Quotas:    memory.NewStorageQuotaRepository(db),
		}, func() error { return nil }, nil
	}

	db, err := connectWithRetry(cfg.Database.GetDSN(), 5, time.Second*5)
	if err != nil {
		return service.Repositories{}, nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	if err := runMigrations(cfg); err != nil {
		db.Close()
		return service.Repositories{}, nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return service.Repositories{}, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return service.Repositories{
		Users:     repository.NewUserRepository(db),
		Documents: repository.NewDocumentRepository(db),
		Versions:  repository.NewVersionRepository(db),
		Comments:  repository.NewCommentRepository(db),
		Shares:    repository.NewShareRepository(db),
		Quotas:    repository.NewStorageQuotaRepository(db, cfg.Quota.DefaultLimit),
	}, db.Close, nil
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Infof("Using in-memory blob storage")
		return storage.NewMemoryStorage(), nil
	}
	return storage.NewS3Storage(cfg.Storage)
}

// openRevoker подключает redis для списка отозванных токенов, если он настроен
func openRevoker(cfg *config.Config) (auth.Revoker, func() error, error) {
	if cfg.Redis.Addr == "" {
		log.Infof("Redis is not configured, revoked tokens are kept in memory")
		return auth.NewMemoryRevoker(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return auth.NewRedisRevoker(client), client.Close, nil
}

func main() {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.SetLogLevel(appConfig.Log.Level); err != nil {
		log.Fatalf("Failed to set log level: %v", err)
	}

	repos, closeDB, err := openRepositories(appConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	blobs, err := openStorage(appConfig)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}

	revoker, closeRedis, err := openRevoker(appConfig)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	tokens := auth.NewTokenManager(appConfig.Auth, revoker)

	// Инициализация сервисов
	permissionService := service.NewPermissionService(repos.Shares)
	quotaService := service.NewStorageQuotaService(repos.Quotas)
	authService := service.NewAuthService(repos.Users, tokens)
	documentService := service.NewDocumentService(repos, blobs, permissionService, quotaService, appConfig.Server.BaseURL)
	previewService := preview.NewService(documentService, blobs, nil)

	metrics, err := handler.NewMetrics()
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	router := handler.NewRouter(handler.Services{
		Auth:      authService,
		Documents: documentService,
		Quota:     quotaService,
		Preview:   previewService,
		Tokens:    tokens,
	}, metrics, requestTimeout)

	// gRPC сервер отдает только стандартный health check
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: router,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", appConfig.Server.GRPCPort))
		if err != nil {
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		log.Infof("Starting gRPC server on port %s", appConfig.Server.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	go func() {
		log.Infof("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-quit
	log.Infof("Shutting down servers...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("HTTP server forced to shutdown: %v", err)
	}

	grpcServer.GracefulStop()

	if err := closeRedis(); err != nil {
		log.Errorf("Error closing redis connection: %v", err)
	}
	if err := closeDB(); err != nil {
		log.Errorf("Error closing database connection: %v", err)
	}

	log.Infof("Server exited properly")
}
