package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) CreateTrain(ctx context.Context, train *models.Train) error {
	if train.Id == "" {
		train.Id = uuid.New().String()
	}
	if train.TotalSeats <= 0 {
		return fmt.Errorf("total seats must be positive, got %d", train.TotalSeats)
	}
	_, err := s.db.ExecContext(ctx, queryInsertTrain,
		train.Id, train.Name, train.TrainNumber, train.Source, train.Destination,
		train.DepartureTime, train.ArrivalTime, train.Price.String(), train.TotalSeats)
	if err != nil {
		if _, ok := uniqueViolationField(err); ok {
			return fmt.Errorf("%w: train number %s", store.ErrDuplicate, train.TrainNumber)
		}
		return fmt.Errorf("failed to create train: %w", err)
	}
	zap.L().Info("Train created", zap.String("train_id", train.Id), zap.String("number", train.TrainNumber))
	return nil
}

func (s *Service) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if schedule.Id == "" {
		schedule.Id = uuid.New().String()
	}
	if schedule.AvailableSeats < 0 {
		return fmt.Errorf("available seats cannot be negative, got %d", schedule.AvailableSeats)
	}
	_, err := s.db.ExecContext(ctx, queryInsertSchedule,
		schedule.Id, schedule.TrainId, schedule.Date, schedule.AvailableSeats)
	if err != nil {
		if _, ok := uniqueViolationField(err); ok {
			return fmt.Errorf("%w: schedule for train %s on %s", store.ErrDuplicate,
				schedule.TrainId, schedule.Date.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (s *Service) SearchSchedules(ctx context.Context, source, destination string, date *time.Time) ([]store.ScheduleMatch, error) {
	var rows *sql.Rows
	var err error
	if date != nil {
		rows, err = s.db.QueryContext(ctx, querySearchSchedulesByDate, source, destination, date.Format("2006-01-02"))
	} else {
		rows, err = s.db.QueryContext(ctx, querySearchSchedules, source, destination)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search schedules: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	matches := []store.ScheduleMatch{}
	for rows.Next() {
		var m store.ScheduleMatch
		var priceStr string
		err := rows.Scan(&m.ScheduleId, &m.TrainName, &m.TrainNumber, &m.Source,
			&m.Destination, &m.Date, &m.AvailableSeats, &priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule match: %w", err)
		}
		if m.Price, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse price '%s': %w", priceStr, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return matches, nil
}
