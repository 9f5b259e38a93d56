package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rail-booking-go/internal/database"
	"rail-booking-go/internal/identity"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/notify"
	"rail-booking-go/internal/postgres"
	"rail-booking-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store    store.Store
	Identity identity.Provider
	Notifier notify.Sender
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	st, err := InitializeStoreOnly(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := identity.NewRedisProvider(ctx, cfg.Redis)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Services{
		Store:    st,
		Identity: provider,
		Notifier: notify.NewLogSender(),
	}, nil
}

// InitializeStoreOnly initializes just the persistence backend without
// Redis. Useful for offline tooling like seeding and balance queries.
func InitializeStoreOnly(ctx context.Context, cfg *models.Config) (store.Store, error) {
	switch cfg.Database.Backend {
	case models.BackendSQLite:
		svc, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		zap.L().Info("Using SQLite backend", zap.String("path", cfg.Database.Path))
		return svc, nil
	case models.BackendPostgres:
		svc, err := postgres.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		zap.L().Info("Using PostgreSQL backend", zap.String("host", cfg.Database.Host))
		return svc, nil
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Database.Backend)
	}
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
	if closer, ok := cs.Identity.(interface{ Close() error }); ok {
		closer.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
