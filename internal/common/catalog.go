package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type TrainEntry struct {
	Name          string   `yaml:"name"`
	TrainNumber   string   `yaml:"train_number"`
	Source        string   `yaml:"source"`
	Destination   string   `yaml:"destination"`
	DepartureTime string   `yaml:"departure_time"`
	ArrivalTime   string   `yaml:"arrival_time"`
	Price         string   `yaml:"price"`
	TotalSeats    int      `yaml:"total_seats"`
	Dates         []string `yaml:"dates"`
}

type CatalogConfig struct {
	Trains []TrainEntry `yaml:"trains"`
}

// LoadCatalog reads the train catalog used to seed the database.
func LoadCatalog(catalogFile string) ([]TrainEntry, error) {
	var catalogPath string
	if filepath.IsAbs(catalogFile) {
		catalogPath = catalogFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		catalogPath = filepath.Join(wd, catalogFile)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", catalogFile, err)
	}

	var config CatalogConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", catalogFile, err)
	}

	for i, train := range config.Trains {
		if train.Name == "" {
			return nil, fmt.Errorf("train at index %d missing name", i)
		}
		if train.TrainNumber == "" {
			return nil, fmt.Errorf("train at index %d missing train_number", i)
		}
		if train.Source == "" || train.Destination == "" {
			return nil, fmt.Errorf("train at index %d missing source or destination", i)
		}
		if train.Price == "" {
			return nil, fmt.Errorf("train at index %d missing price", i)
		}
		if train.TotalSeats <= 0 {
			return nil, fmt.Errorf("train at index %d has no seats", i)
		}
	}

	return config.Trains, nil
}
