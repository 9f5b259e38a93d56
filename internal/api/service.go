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

// Package api validates requests and orchestrates the store, identity
// provider and notifier. Handlers stay thin; all business rules live here.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rail-booking-go/internal/identity"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/notify"
	"rail-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidCredentials covers both unknown identifiers and wrong
// passwords, so login responses never reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	usernameMinLen = 5
	usernameMaxLen = 19

	searchDateLayout = "2006-01-02"
)

type Service struct {
	store    store.Store
	identity identity.Provider
	notifier notify.Sender
}

func NewService(st store.Store, provider identity.Provider, notifier notify.Sender) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	return &Service{store: st, identity: provider, notifier: notifier}, nil
}

// Signup registers a new account with an initial empty wallet.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return nil, models.NewValidationError("username", "must be between %d and %d characters", usernameMinLen, usernameMaxLen)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError("email", "must be a valid email address")
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return nil, models.NewValidationError("phone_number", "cannot be empty")
	}
	if req.Password == "" {
		return nil, models.NewValidationError("password", "cannot be empty")
	}
	if req.Password != req.ConfirmPassword {
		return nil, models.NewValidationError("confirm_password", "passwords do not match")
	}

	hash, err := identity.HashCredential(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.store.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("User registered", zap.String("user_id", user.Id), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials against an email or phone number and
// issues a bearer token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, models.NewValidationError("identifier", "cannot be empty")
	}
	if req.Password == "" {
		return nil, models.NewValidationError("password", "cannot be empty")
	}

	user, err := s.store.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if !identity.CheckCredential(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.identity.IssueToken(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	zap.L().Info("User logged in", zap.String("user_id", user.Id))
	return &models.LoginResult{
		Token:       token,
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}, nil
}

// Logout revokes the presented bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.identity.RevokeToken(ctx, token)
}

// RequestPasswordReset issues a single-use reset token and mails it to
// the account's address. Notification failure is logged, not returned:
// the token stays valid and support can resend it.
func (s *Service) RequestPasswordReset(ctx context.Context, req models.ForgotPasswordRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return models.NewValidationError("email", "cannot be empty")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.store.CreatePasswordResetToken(ctx, user.Id, token); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s,\n\nUse the token below to reset your password. It expires in %s and can be used once.\n\nToken: %s\n",
		user.Username, store.ResetTokenMaxAge, token)
	if err := s.notifier.Send(ctx, user.Email, "Password reset request", body); err != nil {
		zap.L().Warn("Failed to send password reset notification",
			zap.String("user_id", user.Id),
			zap.Error(err))
	}

	zap.L().Info("Password reset requested", zap.String("user_id", user.Id))
	return nil
}

// ConfirmPasswordReset consumes a reset token and replaces the
// account's password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.Token == "" {
		return models.NewValidationError("token", "cannot be empty")
	}
	if req.NewPassword == "" {
		return models.NewValidationError("new_password", "cannot be empty")
	}
	if req.NewPassword != req.ConfirmPassword {
		return models.NewValidationError("confirm_password", "passwords do not match")
	}

	userId, err := s.store.ConsumePasswordResetToken(ctx, req.Token)
	if err != nil {
		return err
	}
	hash, err := identity.HashCredential(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, userId, hash); err != nil {
		return err
	}

	zap.L().Info("Password reset completed", zap.String("user_id", userId))
	return nil
}

// Balance returns the user's current wallet balance, provisioning a
// zero wallet on first access.
func (s *Service) Balance(ctx context.Context, userId string) (decimal.Decimal, error) {
	return s.store.GetBalance(ctx, userId)
}

// Credit adds funds to the user's wallet.
func (s *Service) Credit(ctx context.Context, userId string, req models.AmountRequest) (*models.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	approver, err := s.resolveApprover(ctx, req.ApproverId)
	if err != nil {
		return nil, err
	}
	return s.store.Credit(ctx, userId, amount, approver)
}

// Debit removes funds from the user's wallet.
func (s *Service) Debit(ctx context.Context, userId string, req models.AmountRequest) (*models.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	approver, err := s.resolveApprover(ctx, req.ApproverId)
	if err != nil {
		return nil, err
	}
	return s.store.Debit(ctx, userId, amount, approver)
}

// Transactions returns the user's ledger history, newest first.
func (s *Service) Transactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Transactions(ctx, userId, limit, offset)
}

// Book atomically reserves seats, creates tickets and bookings, and
// debits the total fare from the user's wallet.
func (s *Service) Book(ctx context.Context, userId string, req models.BookingRequest) ([]store.BookingRecord, error) {
	if req.ScheduleId == "" {
		return nil, models.NewValidationError("train_schedule_id", "cannot be empty")
	}
	if len(req.Passengers) == 0 {
		return nil, models.NewValidationError("passengers", "at least one passenger is required")
	}

	passengers := make([]store.PassengerParams, len(req.Passengers))
	for i, p := range req.Passengers {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, models.NewValidationError("passengers", "passenger %d: name cannot be empty", i+1)
		}
		if p.Age <= 0 {
			return nil, models.NewValidationError("passengers", "passenger %d: age must be positive", i+1)
		}
		if !models.IsValidTravelClass(p.ClassType) {
			return nil, models.NewValidationError("passengers", "passenger %d: unknown travel class %q", i+1, p.ClassType)
		}
		passengers[i] = store.PassengerParams{Name: name, Age: p.Age, ClassType: p.ClassType}
	}

	status := req.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	if !models.IsValidPaymentStatus(status) {
		return nil, models.NewValidationError("payment_status", "unknown payment status %q", status)
	}

	records, err := s.store.CreateBooking(ctx, store.BookingParams{
		UserId:        userId,
		ScheduleId:    req.ScheduleId,
		Passengers:    passengers,
		PaymentStatus: status,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Booking created",
		zap.String("user_id", userId),
		zap.String("schedule_id", req.ScheduleId),
		zap.Int("passengers", len(records)))
	return records, nil
}

// Cancel releases a booking's seat and refunds its fare.
func (s *Service) Cancel(ctx context.Context, userId, bookingId string) (*store.CancellationResult, error) {
	if bookingId == "" {
		return nil, models.NewValidationError("booking_id", "cannot be empty")
	}
	result, err := s.store.CancelBooking(ctx, userId, bookingId)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Booking cancelled",
		zap.String("user_id", userId),
		zap.String("booking_id", bookingId),
		zap.String("refund", result.Refund.String()))
	return result, nil
}

// Bookings lists the user's active bookings.
func (s *Service) Bookings(ctx context.Context, userId string) ([]store.BookingRecord, error) {
	return s.store.ListBookings(ctx, userId)
}

// Search finds schedules by source and destination substring, with an
// optional exact travel date in YYYY-MM-DD form.
func (s *Service) Search(ctx context.Context, source, destination, date string) ([]store.ScheduleMatch, error) {
	var travelDate *time.Time
	if date != "" {
		parsed, err := time.Parse(searchDateLayout, date)
		if err != nil {
			return nil, models.NewValidationError("date", "must be in YYYY-MM-DD form")
		}
		travelDate = &parsed
	}
	return s.store.SearchSchedules(ctx, source, destination, travelDate)
}

// resolveApprover loads and validates an optional approver id.
func (s *Service) resolveApprover(ctx context.Context, approverId string) (*store.Approver, error) {
	if approverId == "" {
		return nil, nil
	}
	user, err := s.store.GetUserById(ctx, approverId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NewValidationError("approver_id", "unknown approver %q", approverId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approver: %w", err)
	}
	return &store.Approver{Id: user.Id, Name: user.Username}, nil
}

// parseAmount accepts a positive decimal string with at most two
// fraction digits.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, store.ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, store.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, store.ErrInvalidAmount
	}
	return amount, nil
}
