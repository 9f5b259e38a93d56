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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"rail-booking-go/internal/models"
)

func Load() (*models.Config, error) {
	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	tokenTTL, err := getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	backend := getEnvString("DB_BACKEND", models.BackendSQLite)
	if backend != models.BackendSQLite && backend != models.BackendPostgres {
		return nil, fmt.Errorf("unsupported DB_BACKEND: %q", backend)
	}

	return &models.Config{
		Server: models.ServerConfig{
			Port:            getEnvString("SERVER_PORT", "8080"),
			ShutdownTimeout: shutdownTimeout,
		},
		Database: models.DatabaseConfig{
			Backend:         backend,
			Path:            getEnvString("DATABASE_PATH", "bookings.db"),
			Host:            getEnvString("PG_HOST", "localhost"),
			Port:            getEnvString("PG_PORT", "5432"),
			User:            getEnvString("PG_USER", "postgres"),
			Password:        getEnvString("PG_PASSWORD", ""),
			Name:            getEnvString("PG_DBNAME", "rail_booking"),
			SSLMode:         getEnvString("PG_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Redis: models.RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TokenTTL: tokenTTL,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
