// Package postgres is the PostgreSQL-backed persistence layer. Unlike
// the SQLite backend it serializes seat and wallet mutations with
// SELECT ... FOR UPDATE row locks inside each operation's transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Store.
var _ store.Store = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.Host == "" || cfg.Name == "" {
		return nil, fmt.Errorf("postgres host and database name are required")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	zap.L().Info("Opening PostgreSQL database",
		zap.String("host", cfg.Host),
		zap.String("dbname", cfg.Name))
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("PostgreSQL service initialized successfully")
	return service, nil
}

func (s *Service) Close() error {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		balance NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		version BIGINT NOT NULL DEFAULT 1,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS trains (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		train_number TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		total_seats INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trains_route ON trains(source, destination);

	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		train_id TEXT NOT NULL REFERENCES trains(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
		seat_sequence BIGINT NOT NULL DEFAULT 0,
		UNIQUE(train_id, date)
	);

	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		schedule_id TEXT REFERENCES schedules(id) ON DELETE CASCADE,
		seat_number TEXT NOT NULL,
		is_booked BOOLEAN NOT NULL DEFAULT false,
		class_type TEXT NOT NULL DEFAULT 'General',
		UNIQUE(schedule_id, seat_number)
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ticket_id TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		passenger_name TEXT NOT NULL,
		passenger_age INTEGER NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ticket_id TEXT,
		approver_id TEXT,
		type TEXT NOT NULL,
		amount NUMERIC(10,2) NOT NULL,
		balance_before NUMERIC(10,2) NOT NULL,
		balance_after NUMERIC(10,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'Success',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// uniqueViolationField extracts the offending column from a PostgreSQL
// unique-constraint error via the constraint name (users_email_key).
func uniqueViolationField(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return "", false
	}
	return pqErr.Constraint, true
}
