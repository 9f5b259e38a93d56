package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rail-booking-go/internal/fare"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/seats"
	"rail-booking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateBooking runs the whole booking flow in one database
// transaction with the schedule row locked FOR UPDATE, so concurrent
// bookings against the same schedule serialize at the seat counter.
func (s *Service) CreateBooking(ctx context.Context, params store.BookingParams) ([]store.BookingRecord, error) {
	count := len(params.Passengers)
	if count == 0 {
		return nil, fmt.Errorf("passenger list cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var schedule models.Schedule
	var train models.Train
	var priceStr string
	err = tx.QueryRowContext(ctx, queryGetScheduleForBooking, params.ScheduleId).Scan(
		&schedule.Id, &schedule.AvailableSeats, &schedule.SeatSequence, &schedule.Date,
		&train.Id, &train.Name, &train.TrainNumber, &train.Source, &train.Destination,
		&priceStr, &train.TotalSeats)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: schedule %s", store.ErrNotFound, params.ScheduleId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if train.Price, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("failed to parse price '%s': %w", priceStr, err)
	}

	if schedule.AvailableSeats < count {
		return nil, fmt.Errorf("%w: need %d, have %d", store.ErrInsufficientSeats, count, schedule.AvailableSeats)
	}

	totalFare, err := fare.Total(train.Price, count)
	if err != nil {
		return nil, err
	}

	wallet, err := lockWalletTx(ctx, tx, params.UserId)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(totalFare) {
		return nil, fmt.Errorf("%w: balance %s, fare %s", store.ErrInsufficientFunds,
			wallet.Balance.String(), totalFare.String())
	}

	result, err := tx.ExecContext(ctx, queryReserveSeats, count, count, params.ScheduleId, count)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("seat reservation failed - %w", store.ErrConcurrentModification)
	}

	seatNumbers := seats.Numbers(schedule.Id, schedule.SeatSequence+1, count)

	records := make([]store.BookingRecord, 0, count)
	firstTicketId := ""
	for i, passenger := range params.Passengers {
		ticketId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertTicket, ticketId, schedule.Id, seatNumbers[i], passenger.ClassType); err != nil {
			return nil, fmt.Errorf("failed to create ticket: %w", err)
		}
		if firstTicketId == "" {
			firstTicketId = ticketId
		}

		bookingId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertBooking, bookingId, params.UserId, ticketId,
			passenger.Name, passenger.Age, params.PaymentStatus); err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		records = append(records, store.BookingRecord{
			BookingId:     bookingId,
			TicketId:      ticketId,
			SeatNumber:    seatNumbers[i],
			PassengerName: passenger.Name,
			PassengerAge:  passenger.Age,
			ClassType:     passenger.ClassType,
			PaymentStatus: params.PaymentStatus,
			Fare:          train.Price,
			TrainName:     train.Name,
			TrainNumber:   train.TrainNumber,
			Source:        train.Source,
			Destination:   train.Destination,
			Date:          schedule.Date,
		})
	}

	txn, err := applyDeltaTx(ctx, tx, params.UserId, totalFare, models.TransactionBooking, firstTicketId, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	zap.L().Info("Booking created",
		zap.String("user_id", params.UserId),
		zap.String("schedule_id", schedule.Id),
		zap.Int("passengers", count),
		zap.String("total_fare", totalFare.String()),
		zap.String("transaction_id", txn.Id))
	return records, nil
}

func (s *Service) CancelBooking(ctx context.Context, userId, bookingId string) (*store.CancellationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ticketId, seatNumber string
	var scheduleId sql.NullString
	err = tx.QueryRowContext(ctx, queryGetBookingForCancel, bookingId, userId).
		Scan(&bookingId, &ticketId, &scheduleId, &seatNumber)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: booking %s", store.ErrNotFound, bookingId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx, queryUnbookTicket, ticketId); err != nil {
		return nil, fmt.Errorf("failed to unbook ticket: %w", err)
	}

	result := &store.CancellationResult{
		BookingId: bookingId,
		TicketId:  ticketId,
		Refund:    decimal.Zero,
	}

	if scheduleId.Valid {
		result.ScheduleId = scheduleId.String

		var availableSeats, totalSeats int
		var priceStr string
		err = tx.QueryRowContext(ctx, queryGetScheduleCapacityForUpdate, scheduleId.String).
			Scan(&availableSeats, &totalSeats, &priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule capacity: %w", err)
		}
		if availableSeats+1 > totalSeats {
			return nil, fmt.Errorf("%w: schedule %s already at %d/%d", store.ErrCapacityExceeded,
				scheduleId.String, availableSeats, totalSeats)
		}

		if _, err := tx.ExecContext(ctx, queryReleaseSeat, scheduleId.String, totalSeats); err != nil {
			return nil, fmt.Errorf("failed to release seat: %w", err)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price '%s': %w", priceStr, err)
		}

		refundTxn, err := applyDeltaTx(ctx, tx, userId, price, models.TransactionRefund, ticketId, "")
		if err != nil {
			return nil, err
		}
		result.SeatReleased = true
		result.Refund = price
		result.RefundTransactionId = refundTxn.Id
	}

	if _, err := tx.ExecContext(ctx, queryDeleteBooking, bookingId); err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	zap.L().Info("Booking cancelled",
		zap.String("booking_id", bookingId),
		zap.String("user_id", userId),
		zap.String("seat_number", seatNumber),
		zap.Bool("seat_released", result.SeatReleased),
		zap.String("refund", result.Refund.String()))
	return result, nil
}

func (s *Service) ListBookings(ctx context.Context, userId string) ([]store.BookingRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryListBookings, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	records := []store.BookingRecord{}
	for rows.Next() {
		var r store.BookingRecord
		var priceStr, trainName, trainNumber, source, destination sql.NullString
		var date sql.NullTime
		err := rows.Scan(&r.BookingId, &r.TicketId, &r.SeatNumber, &r.PassengerName,
			&r.PassengerAge, &r.ClassType, &r.PaymentStatus, &priceStr, &trainName,
			&trainNumber, &source, &destination, &date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if priceStr.Valid {
			if r.Fare, err = decimal.NewFromString(priceStr.String); err != nil {
				return nil, fmt.Errorf("failed to parse fare '%s': %w", priceStr.String, err)
			}
		}
		r.TrainName = trainName.String
		r.TrainNumber = trainNumber.String
		r.Source = source.String
		r.Destination = destination.String
		if date.Valid {
			r.Date = date.Time
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return records, nil
}
