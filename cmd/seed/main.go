package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"rail-booking-go/internal/common"
	"rail-booking-go/internal/config"
	"rail-booking-go/internal/models"
	"rail-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// seedTrain creates one train and a schedule per listed date. Duplicate
// trains and schedules are skipped so reseeding is safe.
func seedTrain(ctx context.Context, st store.Store, entry common.TrainEntry) (created int, err error) {
	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return 0, err
	}

	train := &models.Train{
		Name:          entry.Name,
		TrainNumber:   entry.TrainNumber,
		Source:        entry.Source,
		Destination:   entry.Destination,
		DepartureTime: entry.DepartureTime,
		ArrivalTime:   entry.ArrivalTime,
		Price:         price,
		TotalSeats:    entry.TotalSeats,
	}
	if err := st.CreateTrain(ctx, train); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			zap.L().Info("Train already seeded", zap.String("number", entry.TrainNumber))
			return 0, nil
		}
		return 0, err
	}

	for _, dateStr := range entry.Dates {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return created, err
		}
		schedule := &models.Schedule{
			TrainId:        train.Id,
			Date:           date,
			AvailableSeats: entry.TotalSeats,
		}
		if err := st.CreateSchedule(ctx, schedule); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}

	return created, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	catalogFlag := flag.String("catalog", "trains.yaml", "Path to the train catalog file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	entries, err := common.LoadCatalog(*catalogFlag)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("trains", len(entries)))

	st, err := common.InitializeStoreOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	totalSchedules := 0
	for _, entry := range entries {
		created, err := seedTrain(ctx, st, entry)
		if err != nil {
			logger.Error("Failed to seed train",
				zap.String("number", entry.TrainNumber),
				zap.Error(err))
			continue
		}
		totalSchedules += created
	}

	logger.Info("Seeding completed",
		zap.Int("trains", len(entries)),
		zap.Int("schedules_created", totalSchedules))
}
