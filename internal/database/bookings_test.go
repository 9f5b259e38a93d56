package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/shopspring/decimal"
)

// setupBookingTest provisions a funded user and a 5-seat schedule at
// price 100 per seat.
func setupBookingTest(t *testing.T) (*Service, string, string, func()) {
	service, cleanup := newTestService(t)
	ctx := context.Background()

	userId := createTestUser(t, service, "traveler")
	if _, err := service.Credit(ctx, userId, decimal.RequireFromString("500"), nil); err != nil {
		t.Fatalf("Failed to fund wallet: %v", err)
	}

	train := &models.Train{
		Name:          "Night Express",
		TrainNumber:   "12345",
		Source:        "Springfield",
		Destination:   "Shelbyville",
		DepartureTime: "21:00",
		ArrivalTime:   "06:30",
		Price:         decimal.RequireFromString("100"),
		TotalSeats:    5,
	}
	if err := service.CreateTrain(ctx, train); err != nil {
		t.Fatalf("Failed to create train: %v", err)
	}

	schedule := &models.Schedule{
		TrainId:        train.Id,
		Date:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AvailableSeats: train.TotalSeats,
	}
	if err := service.CreateSchedule(ctx, schedule); err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}

	return service, userId, schedule.Id, cleanup
}

func bookPassengers(ctx context.Context, service *Service, userId, scheduleId string, names ...string) ([]store.BookingRecord, error) {
	passengers := make([]store.PassengerParams, len(names))
	for i, name := range names {
		passengers[i] = store.PassengerParams{Name: name, Age: 30 + i, ClassType: models.ClassSleeper}
	}
	return service.CreateBooking(ctx, store.BookingParams{
		UserId:        userId,
		ScheduleId:    scheduleId,
		Passengers:    passengers,
		PaymentStatus: models.PaymentPending,
	})
}

func scheduleSeats(t *testing.T, service *Service, scheduleId string) int {
	t.Helper()
	var seats int
	err := service.db.QueryRow(`SELECT available_seats FROM schedules WHERE id = ?`, scheduleId).Scan(&seats)
	if err != nil {
		t.Fatalf("Failed to read available seats: %v", err)
	}
	return seats
}

func TestCreateBooking_DebitsFareAndAssignsSeats(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	records, err := bookPassengers(ctx, service, userId, scheduleId, "Alice", "Bob")
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].SeatNumber == records[1].SeatNumber {
		t.Errorf("Seat numbers must be distinct, both got %s", records[0].SeatNumber)
	}
	for _, r := range records {
		if r.SeatNumber == "" {
			t.Error("Expected non-empty seat number")
		}
		if r.TrainNumber != "12345" {
			t.Errorf("Expected train number 12345, got %s", r.TrainNumber)
		}
	}

	if got := scheduleSeats(t, service, scheduleId); got != 3 {
		t.Errorf("Expected 3 remaining seats, got %d", got)
	}

	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("300")) {
		t.Errorf("Expected balance 300, got %s", balance.String())
	}

	// One aggregate ledger entry for the whole batch.
	transactions, err := service.Transactions(ctx, userId, 10, 0)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(transactions) != 2 { // initial credit + booking debit
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	booking := transactions[0]
	if booking.Type != models.TransactionBooking {
		t.Errorf("Expected booking transaction, got %s", booking.Type)
	}
	if !booking.Amount.Equal(decimal.RequireFromString("200")) {
		t.Errorf("Expected amount 200, got %s", booking.Amount.String())
	}
	if booking.TicketId != records[0].TicketId {
		t.Errorf("Expected transaction linked to first ticket %s, got %s", records[0].TicketId, booking.TicketId)
	}
}

func TestCreateBooking_InsufficientSeats(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	_, err := bookPassengers(ctx, service, userId, scheduleId, "a", "b", "c", "d", "e", "f")
	if !errors.Is(err, store.ErrInsufficientSeats) {
		t.Fatalf("Expected ErrInsufficientSeats, got %v", err)
	}

	// No partial effects.
	if got := scheduleSeats(t, service, scheduleId); got != 5 {
		t.Errorf("Expected 5 seats untouched, got %d", got)
	}
	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected balance 500 untouched, got %s", balance.String())
	}
}

func TestCreateBooking_InsufficientFunds(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	// Drop the balance to 399.99 so a 4-seat fare of 400 cannot clear.
	if _, err := service.Debit(ctx, userId, decimal.RequireFromString("100.01"), nil); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	_, err := bookPassengers(ctx, service, userId, scheduleId, "a", "b", "c", "d")
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	if got := scheduleSeats(t, service, scheduleId); got != 5 {
		t.Errorf("Expected 5 seats untouched, got %d", got)
	}

	bookings, err := service.ListBookings(ctx, userId)
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("Expected no bookings, got %d", len(bookings))
	}
}

func TestCreateBooking_UnknownSchedule(t *testing.T) {
	service, userId, _, cleanup := setupBookingTest(t)
	defer cleanup()

	_, err := bookPassengers(context.Background(), service, userId, "no-such-schedule", "Alice")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCancelBooking_RefundsAndReleasesSeat(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	records, err := bookPassengers(ctx, service, userId, scheduleId, "Alice")
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	result, err := service.CancelBooking(ctx, userId, records[0].BookingId)
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if !result.SeatReleased {
		t.Error("Expected seat to be released")
	}
	if !result.Refund.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected refund 100, got %s", result.Refund.String())
	}
	if result.RefundTransactionId == "" {
		t.Error("Expected refund transaction id")
	}

	if got := scheduleSeats(t, service, scheduleId); got != 5 {
		t.Errorf("Expected seat pool restored to 5, got %d", got)
	}

	balance, err := service.GetBalance(ctx, userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected balance restored to 500, got %s", balance.String())
	}

	// Ticket survives as a historical record, unbooked.
	var isBooked bool
	err = service.db.QueryRow(`SELECT is_booked FROM tickets WHERE id = ?`, records[0].TicketId).Scan(&isBooked)
	if err != nil {
		t.Fatalf("Failed to read ticket: %v", err)
	}
	if isBooked {
		t.Error("Expected ticket to be unbooked")
	}

	bookings, err := service.ListBookings(ctx, userId)
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("Expected no bookings after cancel, got %d", len(bookings))
	}
}

func TestCancelBooking_Twice(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	records, err := bookPassengers(ctx, service, userId, scheduleId, "Alice")
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if _, err := service.CancelBooking(ctx, userId, records[0].BookingId); err != nil {
		t.Fatalf("First cancel failed: %v", err)
	}
	_, err = service.CancelBooking(ctx, userId, records[0].BookingId)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second cancel, got %v", err)
	}
}

func TestCancelBooking_OtherUsersBooking(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	records, err := bookPassengers(ctx, service, userId, scheduleId, "Alice")
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	otherId := createTestUser(t, service, "stranger")
	_, err = service.CancelBooking(ctx, otherId, records[0].BookingId)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign booking, got %v", err)
	}
}

func TestCreateBooking_SeatNumbersNeverReissued(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	first, err := bookPassengers(ctx, service, userId, scheduleId, "Alice")
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := service.CancelBooking(ctx, userId, first[0].BookingId); err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}

	second, err := bookPassengers(ctx, service, userId, scheduleId, "Bob")
	if err != nil {
		t.Fatalf("Rebooking failed: %v", err)
	}
	if second[0].SeatNumber == first[0].SeatNumber {
		t.Errorf("Seat number %s was reissued after cancellation", first[0].SeatNumber)
	}
}

func TestCreateBooking_ConcurrentContention(t *testing.T) {
	service, userId, scheduleId, cleanup := setupBookingTest(t)
	defer cleanup()
	ctx := context.Background()

	// Two batches of 3 compete for 5 seats: exactly one can win.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for {
				_, err := bookPassengers(ctx, service, userId, scheduleId, "p1", "p2", "p3")
				if errors.Is(err, store.ErrConcurrentModification) {
					continue
				}
				results <- err
				return
			}
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, seatFailures int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrInsufficientSeats):
			seatFailures++
		default:
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if successes != 1 || seatFailures != 1 {
		t.Errorf("Expected 1 success and 1 seat failure, got %d and %d", successes, seatFailures)
	}
	if got := scheduleSeats(t, service, scheduleId); got != 2 {
		t.Errorf("Expected 2 remaining seats, got %d", got)
	}
}
