package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/quizdeck/internal/logger"
)

type Config struct {
	Addr                string
	DBPath              string
	DeckDir             string
	LogLevel            string
	ImportWorkerCount   int
	ImportQueueSize     int
	CorrectDelayMS      int
	WrongDelayMS        int
	LevelAdvanceDelayMS int
	MaxSessions         int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:quizdeck.db"),
		DeckDir:             envOr("DECK_DIR", "assets"),
		LogLevel:            strings.ToUpper(envOr("LOG_LEVEL", "INFO")),
		ImportWorkerCount:   envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:     envIntOr("IMPORT_QUEUE_SIZE", 32),
		CorrectDelayMS:      envIntOr("CORRECT_DELAY_MS", 1000),
		WrongDelayMS:        envIntOr("WRONG_DELAY_MS", 1500),
		LevelAdvanceDelayMS: envIntOr("LEVEL_ADVANCE_DELAY_MS", 3000),
		MaxSessions:         envIntOr("MAX_SESSIONS", 1000),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if c.DeckDir == "" {
		errs = append(errs, errors.New("DECK_DIR cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	positive := []struct {
		key string
		val int
	}{
		{"IMPORT_WORKER_COUNT", c.ImportWorkerCount},
		{"IMPORT_QUEUE_SIZE", c.ImportQueueSize},
		{"MAX_SESSIONS", c.MaxSessions},
	}
	for _, p := range positive {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.key, p.val))
		}
	}
	delays := []struct {
		key string
		val int
	}{
		{"CORRECT_DELAY_MS", c.CorrectDelayMS},
		{"WRONG_DELAY_MS", c.WrongDelayMS},
		{"LEVEL_ADVANCE_DELAY_MS", c.LevelAdvanceDelayMS},
	}
	for _, d := range delays {
		if d.val < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", d.key, d.val))
		}
	}
	return errors.Join(errs...)
}

func (c Config) CorrectDelay() time.Duration {
	return time.Duration(c.CorrectDelayMS) * time.Millisecond
}

func (c Config) WrongDelay() time.Duration {
	return time.Duration(c.WrongDelayMS) * time.Millisecond
}

func (c Config) LevelAdvanceDelay() time.Duration {
	return time.Duration(c.LevelAdvanceDelayMS) * time.Millisecond
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		logger.Warn("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
