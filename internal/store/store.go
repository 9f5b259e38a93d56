package store

import (
	"context"
	"errors"
	"time"

	"rail-booking-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrInsufficientSeats      = errors.New("not enough seats available")
	ErrInsufficientFunds      = errors.New("insufficient wallet balance")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrCapacityExceeded       = errors.New("seat release would exceed train capacity")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicate              = errors.New("duplicate record")
	ErrTokenExpired           = errors.New("password reset token expired")
)

// ResetTokenMaxAge bounds the validity of a password reset token.
const ResetTokenMaxAge = time.Hour

// Approver identifies the operator approving a manual wallet movement.
// It must reference an existing user; raw ids are rejected upstream.
type Approver struct {
	Id   string
	Name string
}

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Username     string
	Email        string
	PhoneNumber  string
	PasswordHash string
}

// PassengerParams describes one passenger in a booking request.
type PassengerParams struct {
	Name      string
	Age       int
	ClassType string
}

// BookingParams contains the parameters for one atomic booking operation.
type BookingParams struct {
	UserId        string
	ScheduleId    string
	Passengers    []PassengerParams
	PaymentStatus string
}

// BookingRecord is one created booking enriched with display fields.
type BookingRecord struct {
	BookingId     string          `json:"booking_id"`
	TicketId      string          `json:"ticket_id"`
	SeatNumber    string          `json:"seat_number"`
	PassengerName string          `json:"passenger_name"`
	PassengerAge  int             `json:"passenger_age"`
	ClassType     string          `json:"class_type"`
	PaymentStatus string          `json:"payment_status"`
	Fare          decimal.Decimal `json:"fare"`
	TrainName     string          `json:"train_name"`
	TrainNumber   string          `json:"train_number"`
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	Date          time.Time       `json:"date"`
}

// CancellationResult reports the effects of a cancellation.
type CancellationResult struct {
	BookingId           string          `json:"booking_id"`
	TicketId            string          `json:"ticket_id"`
	ScheduleId          string          `json:"schedule_id,omitempty"`
	SeatReleased        bool            `json:"seat_released"`
	Refund              decimal.Decimal `json:"refund"`
	RefundTransactionId string          `json:"refund_transaction_id"`
}

// ScheduleMatch is one row of a schedule search result.
type ScheduleMatch struct {
	ScheduleId     string          `json:"train_schedule_id"`
	TrainName      string          `json:"train_name"`
	TrainNumber    string          `json:"train_number"`
	Source         string          `json:"source"`
	Destination    string          `json:"destination"`
	Date           time.Time       `json:"date"`
	AvailableSeats int             `json:"available_seats"`
	Price          decimal.Decimal `json:"price"`
}

// Store is the persistence surface shared by every backend. All
// multi-entity operations run inside a single database transaction
// and roll back completely on any failure.
type Store interface {
	// Users
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByIdentifier resolves an email or phone number.
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userId, passwordHash string) error

	// Password reset tokens
	CreatePasswordResetToken(ctx context.Context, userId, token string) error
	// ConsumePasswordResetToken deletes the token and returns its user id.
	// Tokens older than ResetTokenMaxAge fail with ErrTokenExpired.
	ConsumePasswordResetToken(ctx context.Context, token string) (string, error)

	// Wallet ledger. GetBalance lazily provisions a zero wallet on
	// first access. Credit and Debit write one immutable transaction
	// row per mutation.
	GetBalance(ctx context.Context, userId string) (decimal.Decimal, error)
	Credit(ctx context.Context, userId string, amount decimal.Decimal, approver *Approver) (*models.Transaction, error)
	Debit(ctx context.Context, userId string, amount decimal.Decimal, approver *Approver) (*models.Transaction, error)
	Transactions(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)

	// Catalog
	CreateTrain(ctx context.Context, train *models.Train) error
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	SearchSchedules(ctx context.Context, source, destination string, date *time.Time) ([]ScheduleMatch, error)

	// Booking
	CreateBooking(ctx context.Context, params BookingParams) ([]BookingRecord, error)
	CancelBooking(ctx context.Context, userId, bookingId string) (*CancellationResult, error)
	ListBookings(ctx context.Context, userId string) ([]BookingRecord, error)

	Close() error
}
