package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Travel classes recognized on tickets.
const (
	ClassSleeper  = "Sleeper"
	ClassFirstAC  = "First AC"
	ClassSecondAC = "Second AC"
	ClassThirdAC  = "Third AC"
	ClassGeneral  = "General"
)

// TravelClasses lists every recognized travel class.
var TravelClasses = []string{ClassSleeper, ClassFirstAC, ClassSecondAC, ClassThirdAC, ClassGeneral}

// IsValidTravelClass reports whether class is one of the recognized travel classes.
func IsValidTravelClass(class string) bool {
	for _, c := range TravelClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Payment statuses carried on bookings.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
)

// IsValidPaymentStatus reports whether status is a recognized payment status.
func IsValidPaymentStatus(status string) bool {
	return status == PaymentPending || status == PaymentCompleted || status == PaymentFailed
}

// Transaction types recorded in the ledger.
const (
	TransactionCredit  = "credit"
	TransactionDebit   = "debit"
	TransactionBooking = "booking"
	TransactionRefund  = "refund"
)

// User represents a registered account
type User struct {
	Id           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PhoneNumber  string    `db:"phone_number"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Wallet represents the current balance state for a user (hot data)
type Wallet struct {
	Id        string          `db:"id"`
	UserId    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	Version   int64           `db:"version"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Train represents a static route definition
type Train struct {
	Id            string          `db:"id"`
	Name          string          `db:"name"`
	TrainNumber   string          `db:"train_number"`
	Source        string          `db:"source"`
	Destination   string          `db:"destination"`
	DepartureTime string          `db:"departure_time"` // clock time, "15:04"
	ArrivalTime   string          `db:"arrival_time"`
	Price         decimal.Decimal `db:"price"`
	TotalSeats    int             `db:"total_seats"`
}

// Schedule represents a train run on a specific date with a seat pool.
// SeatSequence only ever increments, so seat numbers freed by a
// cancellation are never reissued.
type Schedule struct {
	Id             string    `db:"id"`
	TrainId        string    `db:"train_id"`
	Date           time.Time `db:"date"`
	AvailableSeats int       `db:"available_seats"`
	SeatSequence   int64     `db:"seat_sequence"`
}

// Ticket represents one seat instance on a schedule
type Ticket struct {
	Id         string `db:"id"`
	ScheduleId string `db:"schedule_id"`
	SeatNumber string `db:"seat_number"`
	IsBooked   bool   `db:"is_booked"`
	ClassType  string `db:"class_type"`
}

// Booking links a user to one ticket with passenger details
type Booking struct {
	Id            string    `db:"id"`
	UserId        string    `db:"user_id"`
	TicketId      string    `db:"ticket_id"`
	PassengerName string    `db:"passenger_name"`
	PassengerAge  int       `db:"passenger_age"`
	PaymentStatus string    `db:"payment_status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Transaction represents an immutable audit record of a balance change
// (cold data). Amount is always positive; Type carries the direction.
type Transaction struct {
	Id            string          `db:"id"`
	UserId        string          `db:"user_id"`
	TicketId      string          `db:"ticket_id"`
	ApproverId    string          `db:"approver_id"`
	Type          string          `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// PasswordResetToken is a single-use, time-boxed reset credential
type PasswordResetToken struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}
