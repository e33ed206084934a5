// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jason-s-yu/uno/internal/models"
)

// Config is the process configuration read from the environment.
// Empty RedisAddr or DatabaseURL disables that backend.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Env            string   `env:"UNO_ENV" envDefault:"dev"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"debug"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Seed fixes the shuffle source; 0 seeds from the clock.
	Seed       int64 `env:"UNO_SEED" envDefault:"0"`
	HandSize   int   `env:"UNO_HAND_SIZE" envDefault:"7"`
	MaxPlayers int   `env:"UNO_MAX_PLAYERS" envDefault:"10"`

	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	QueueName   string `env:"HISTORIAN_QUEUE_NAME" envDefault:"uno_actions"`
	DatabaseURL string `env:"DATABASE_URL"`

	BatchSize int `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	FlushMs   int `env:"HISTORIAN_FLUSH_MS" envDefault:"500"`

	// InactivitySec marks in-progress games abandoned after this long without actions. 0 disables.
	InactivitySec int `env:"GAME_INACTIVITY_TIMEOUT_SEC" envDefault:"600"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if c.HandSize < 1 {
		return fmt.Errorf("UNO_HAND_SIZE must be positive, got %d", c.HandSize)
	}
	if c.MaxPlayers < 2 {
		return fmt.Errorf("UNO_MAX_PLAYERS must be at least 2, got %d", c.MaxPlayers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.FlushMs < 1 {
		return fmt.Errorf("HISTORIAN_FLUSH_MS must be positive, got %d", c.FlushMs)
	}
	if c.InactivitySec < 0 {
		return fmt.Errorf("GAME_INACTIVITY_TIMEOUT_SEC must not be negative, got %d", c.InactivitySec)
	}
	return nil
}

// HouseRules maps the table settings onto the engine rules.
func (c Config) HouseRules() models.HouseRules {
	rules := models.DefaultHouseRules()
	rules.HandSize = c.HandSize
	rules.MaxPlayers = c.MaxPlayers
	return rules
}

func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushMs) * time.Millisecond
}

func (c Config) Inactivity() time.Duration {
	return time.Duration(c.InactivitySec) * time.Second
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
