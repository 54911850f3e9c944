// Package config loads and validates configuration at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the jobs service.
type Config struct {
	Port                string
	GRPCPort            string
	DatabaseURL         string
	RedisURL            string
	ScrapeIntervalHours int // How often the cron job fires
	HTTPTimeout         time.Duration
	RunLockTTL          time.Duration
	SourcesFile         string
	Ingestion           *Ingestion
}

// Load reads .env (if present) and the environment, then the sources file,
// and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] Could not load .env: %v", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval, err := positiveInt("SCRAPE_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := positiveInt("HTTP_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	lockMinutes, err := positiveInt("RUN_LOCK_TTL_MINUTES", 120)
	if err != nil {
		return nil, err
	}

	sourcesFile := envOr("SOURCES_FILE", "configs/sources.yaml")
	ing, err := LoadIngestion(sourcesFile)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                envOr("JOBS_PORT", "8080"),
		GRPCPort:            envOr("GRPC_PORT", "9090"),
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		ScrapeIntervalHours: interval,
		HTTPTimeout:         time.Duration(timeoutSecs) * time.Second,
		RunLockTTL:          time.Duration(lockMinutes) * time.Minute,
		SourcesFile:         sourcesFile,
		Ingestion:           ing,
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
