package database

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

func (s *Service) CreatePasswordResetToken(ctx context.Context, userId, token string) error {
	_, err := s.db.ExecContext(ctx, queryInsertResetToken, uuid.New().String(), userId, token)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// ConsumePasswordResetToken validates the token's age and deletes it.
// The token row survives a failed attempt only when it has not expired,
// so expired tokens are removed on first use either way.
func (s *Service) ConsumePasswordResetToken(ctx context.Context, token string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var record models.PasswordResetToken
	err = tx.QueryRowContext(ctx, queryGetResetToken, token).
		Scan(&record.Id, &record.UserId, &record.Token, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load reset token: %w", err)
	}

	if time.Since(record.CreatedAt) > store.ResetTokenMaxAge {
		if _, err := tx.ExecContext(ctx, queryDeleteResetToken, record.Id); err != nil {
			return "", fmt.Errorf("failed to delete expired reset token: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("failed to commit: %w", err)
		}
		zap.L().Warn("Expired reset token presented", zap.String("user_id", record.UserId))
		return "", store.ErrTokenExpired
	}

	if _, err := tx.ExecContext(ctx, queryDeleteResetToken, record.Id); err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return record.UserId, nil
}
