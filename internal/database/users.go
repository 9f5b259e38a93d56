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

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, queryInsertUser,
		id, params.Username, params.Email, params.PhoneNumber, params.PasswordHash)
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			return nil, fmt.Errorf("%w: %s already in use", store.ErrDuplicate, field)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zap.L().Info("User created", zap.String("user_id", id), zap.String("username", params.Username))
	return s.GetUserById(ctx, id)
}

func (s *Service) GetUserById(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserById, id))
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
}

func (s *Service) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, queryGetUserByIdentifier, identifier, identifier))
}

func (s *Service) UpdateUserPassword(ctx context.Context, userId, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, queryUpdateUserPassword, passwordHash, userId)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Service) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.Id, &user.Username, &user.Email, &user.PhoneNumber,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// uniqueViolationField extracts the offending column from a SQLite
// unique-constraint error ("UNIQUE constraint failed: users.email").
func uniqueViolationField(err error) (string, bool) {
	msg := err.Error()
	idx := strings.Index(msg, "UNIQUE constraint failed: ")
	if idx < 0 {
		return "", false
	}
	column := msg[idx+len("UNIQUE constraint failed: "):]
	if dot := strings.LastIndex(column, "."); dot >= 0 {
		column = column[dot+1:]
	}
	return strings.TrimSpace(column), true
}
