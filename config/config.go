package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTripDays are the trip day columns used when TRIP_DAYS is unset.
var DefaultTripDays = []string{
	"Jan 11", "Jan 12", "Jan 13", "Jan 14",
	"Jan 15", "Jan 16", "Jan 17", "Jan 18",
}

const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

type Config struct {
	Environment string
	ServerPort  string

	StorageDriver string
	AttendeesFile string
	CSVBackup     bool
	SQLitePath    string
	TripDays      []string

	AdminSecret     string
	AdminSecretHash string
	JWTSecret       string
	AdminTokenTTL   time.Duration
	SessionTTL      time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerPort:      getEnv("PORT", "8080"),
		StorageDriver:   getEnv("STORAGE_DRIVER", DriverCSV),
		AttendeesFile:   getEnv("ATTENDEES_FILE", "attendees.csv"),
		CSVBackup:       getEnv("CSV_BACKUP", "true") == "true",
		SQLitePath:      getEnv("SQLITE_PATH", "attendance.db"),
		TripDays:        parseDays(getEnv("TRIP_DAYS", "")),
		AdminSecret:     os.Getenv("ADMIN_SECRET"),
		AdminSecretHash: os.Getenv("ADMIN_SECRET_HASH"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.AdminTokenTTL, err = time.ParseDuration(getEnv("ADMIN_TOKEN_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOKEN_TTL: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverCSV, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (expected %q or %q)", cfg.StorageDriver, DriverCSV, DriverSQLite)
	}

	return cfg, nil
}

func parseDays(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), DefaultTripDays...)
	}
	var days []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
