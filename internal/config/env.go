// internal/config/env.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Store backends accepted by D20POTZ_STORE.
const (
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Transports accepted by D20POTZ_TRANSPORT.
const (
	TransportTelegram = "telegram"
	TransportWS       = "ws"
)

// Env holds the process settings read from the environment (and .env).
type Env struct {
	Store       string `env:"D20POTZ_STORE" envDefault:"sqlite"`
	DBDir       string `env:"D20POTZ_DB_DIR" envDefault:"./db"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	PostgresURL string `env:"DATABASE_URL"`

	Transport     string `env:"D20POTZ_TRANSPORT" envDefault:"telegram"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	Port          string `env:"PORT" envDefault:"8080"`

	CardsDir          string `env:"D20POTZ_CARDS_DIR" envDefault:"./cards"`
	TablesPath        string `env:"D20POTZ_CONFIG" envDefault:"./d20potz.yaml"`
	DefaultTablesPath string `env:"D20POTZ_DEFAULT_CONFIG" envDefault:"./default.yaml"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the combinations ParseEnv cannot express.
func (e *Env) Validate() error {
	switch e.Store {
	case StoreSQLite, StoreMemory, StoreRedis:
	case StorePostgres:
		if e.PostgresURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store %q", e.Store)
	}

	switch e.Transport {
	case TransportTelegram:
		if e.TelegramToken == "" {
			return fmt.Errorf("TELEGRAM_TOKEN is required for the %s transport", TransportTelegram)
		}
	case TransportWS:
	default:
		return fmt.Errorf("unknown transport %q", e.Transport)
	}
	return nil
}
