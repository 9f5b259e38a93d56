package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"rail-booking-go/internal/store"
)

func TestConsumePasswordResetToken_SingleUse(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	userId := createTestUser(t, service, "resetter")
	if err := service.CreatePasswordResetToken(ctx, userId, "reset-token-1"); err != nil {
		t.Fatalf("CreatePasswordResetToken failed: %v", err)
	}

	gotUserId, err := service.ConsumePasswordResetToken(ctx, "reset-token-1")
	if err != nil {
		t.Fatalf("ConsumePasswordResetToken failed: %v", err)
	}
	if gotUserId != userId {
		t.Errorf("Expected user %s, got %s", userId, gotUserId)
	}

	// Second use fails: the token was deleted.
	_, err = service.ConsumePasswordResetToken(ctx, "reset-token-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on reuse, got %v", err)
	}
}

func TestConsumePasswordResetToken_Unknown(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	_, err := service.ConsumePasswordResetToken(context.Background(), "never-issued")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestConsumePasswordResetToken_Expired(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	userId := createTestUser(t, service, "latecomer")
	if err := service.CreatePasswordResetToken(ctx, userId, "stale-token"); err != nil {
		t.Fatalf("CreatePasswordResetToken failed: %v", err)
	}

	// Age the token past its validity window.
	staleTime := time.Now().UTC().Add(-store.ResetTokenMaxAge - time.Minute)
	_, err := service.db.Exec(`UPDATE password_reset_tokens SET created_at = ? WHERE token = ?`,
		staleTime, "stale-token")
	if err != nil {
		t.Fatalf("Failed to age token: %v", err)
	}

	_, err = service.ConsumePasswordResetToken(ctx, "stale-token")
	if !errors.Is(err, store.ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}

	// Expired tokens are removed on first presentation.
	_, err = service.ConsumePasswordResetToken(ctx, "stale-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after expiry cleanup, got %v", err)
	}
}
