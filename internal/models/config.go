package models

import "time"

// Supported persistence backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Backend string

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TokenTTL time.Duration
}
