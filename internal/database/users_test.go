package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rail-booking-go/internal/store"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	createTestUser(t, service, "original")

	_, err := service.CreateUser(ctx, store.CreateUserParams{
		Username:     "someone-else",
		Email:        "original@example.com",
		PhoneNumber:  "555-0000",
		PasswordHash: "test-hash",
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("Expected offending field in error, got %q", err.Error())
	}
}

func TestGetUserByIdentifier_EmailOrPhone(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	userId := createTestUser(t, service, "flexible")

	byEmail, err := service.GetUserByIdentifier(ctx, "flexible@example.com")
	if err != nil {
		t.Fatalf("Lookup by email failed: %v", err)
	}
	if byEmail.Id != userId {
		t.Errorf("Expected user %s, got %s", userId, byEmail.Id)
	}

	byPhone, err := service.GetUserByIdentifier(ctx, "555-flexible")
	if err != nil {
		t.Fatalf("Lookup by phone failed: %v", err)
	}
	if byPhone.Id != userId {
		t.Errorf("Expected user %s, got %s", userId, byPhone.Id)
	}

	_, err = service.GetUserByIdentifier(ctx, "unknown@example.com")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	userId := createTestUser(t, service, "rotator")

	if err := service.UpdateUserPassword(ctx, userId, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword failed: %v", err)
	}

	user, err := service.GetUserById(ctx, userId)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if user.PasswordHash != "new-hash" {
		t.Errorf("Expected updated hash, got %q", user.PasswordHash)
	}

	err = service.UpdateUserPassword(ctx, "no-such-user", "hash")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
