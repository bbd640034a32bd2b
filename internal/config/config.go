// Package config reads service configuration from environment variables,
// falling back to local-development defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database holds connection settings for the shared inventory store.
type Database struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// DSN builds a libpq-compatible connection string for PostgreSQL.
func (c Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Auth configures password hashing and session tokens.
type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// LLM configures the optional intent extractor. An empty APIKey disables it.
type LLM struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Pending configures the lifetime of unconfirmed bookings.
// A zero TTL keeps pending bookings until they are confirmed.
type Pending struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Log configures the process logger.
type Log struct {
	Level  string
	Format string // "text" or "json"
}

// Config is the complete configuration of one service process.
type Config struct {
	Port     string
	Database Database
	Auth     Auth
	LLM      LLM
	Pending  Pending
	Log      Log
}

// Load reads an optional .env file and then the process environment.
// defaultPort is used when PORT is unset.
func Load(defaultPort string) (Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	jwtTTL, err := getDuration("JWT_TTL", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return Config{}, err
	}
	llmTimeout, err := getDuration("LLM_TIMEOUT", 8*time.Second)
	if err != nil {
		return Config{}, err
	}
	pendingTTL, err := getDuration("PENDING_BOOKING_TTL", 0)
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := getDuration("PENDING_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: getEnv("PORT", defaultPort),
		Database: Database{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "ticketbooking"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "shared-db/database.sqlite"),
		},
		Auth: Auth{
			JWTSecret:  getEnv("JWT_SECRET", "supersecret"),
			TokenTTL:   jwtTTL,
			BcryptCost: bcryptCost,
		},
		LLM: LLM{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout: llmTimeout,
		},
		Pending: Pending{
			TTL:           pendingTTL,
			SweepInterval: sweepInterval,
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
