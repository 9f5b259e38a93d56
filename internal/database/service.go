/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database is the SQLite-backed persistence layer. Seat and
// wallet mutations use guarded updates with version checks instead of
// row locks; callers may retry on ErrConcurrentModification.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Store.
var _ store.Store = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
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

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// NewServiceWithDB wraps an existing connection. Used by tests and by
// tooling that manages the connection itself.
func NewServiceWithDB(db *sql.DB) *Service {
	return &Service{db: db}
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
	-- Registered accounts
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone_number);

	-- Single-use password reset tokens
	CREATE TABLE IF NOT EXISTS password_reset_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Wallet balances (current state - hot data)
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		balance TEXT NOT NULL DEFAULT '0',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Static route definitions
	CREATE TABLE IF NOT EXISTS trains (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		train_number TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		price TEXT NOT NULL,
		total_seats INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trains_route ON trains(source, destination);

	-- Train runs on specific dates. seat_sequence only increments so
	-- freed seat numbers are never reissued.
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		train_id TEXT NOT NULL REFERENCES trains(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
		seat_sequence INTEGER NOT NULL DEFAULT 0,
		UNIQUE(train_id, date)
	);

	-- Seat instances, created at booking time
	CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		schedule_id TEXT REFERENCES schedules(id) ON DELETE CASCADE,
		seat_number TEXT NOT NULL,
		is_booked INTEGER NOT NULL DEFAULT 0,
		class_type TEXT NOT NULL DEFAULT 'General',
		UNIQUE(schedule_id, seat_number)
	);

	-- Reservations linking users to tickets
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ticket_id TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		passenger_name TEXT NOT NULL,
		passenger_age INTEGER NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id);

	-- Immutable audit trail of balance changes (cold data)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ticket_id TEXT,
		approver_id TEXT,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		balance_before TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Success',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
