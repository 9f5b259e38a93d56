package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
		if constraint, ok := uniqueViolationField(err); ok {
			return nil, fmt.Errorf("%w: %s", store.ErrDuplicate, constraint)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zap.L().Info("User created", zap.String("user_id", id), zap.String("username", params.Username))
	return s.GetUserById(ctx, id)
}

func (s *Service) GetUserById(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, queryGetUserById, id))
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
}

func (s *Service) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, queryGetUserByIdentifier, identifier))
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

func (s *Service) CreatePasswordResetToken(ctx context.Context, userId, token string) error {
	_, err := s.db.ExecContext(ctx, queryInsertResetToken, uuid.New().String(), userId, token)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (s *Service) ConsumePasswordResetToken(ctx context.Context, token string) (string, error) {
	var userId string
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, queryConsumeResetToken, token).Scan(&userId, &createdAt)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	if time.Since(createdAt) > store.ResetTokenMaxAge {
		zap.L().Warn("Expired reset token presented", zap.String("user_id", userId))
		return "", store.ErrTokenExpired
	}
	return userId, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
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
