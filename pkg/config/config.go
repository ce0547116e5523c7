package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Logging       LoggingConfig
	Ingest        IngestConfig
	Storage       StorageConfig
	Watch         WatchConfig
	Observability ObservabilityConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

type IngestConfig struct {
	MaxFileSize     int64
	AnalyzerWorkers int
	ReferencePath   string // empty uses the embedded reference data
}

type StorageConfig struct {
	LocalPath string
}

type WatchConfig struct {
	Schedule        string
	OutputDir       string
	SourceID        string
	DeleteProcessed bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsAddr    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; it never overrides
// variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Ingest: IngestConfig{
			MaxFileSize:     getEnvAsInt64("INGEST_MAX_FILE_SIZE", 20<<20),
			AnalyzerWorkers: getEnvAsInt("INGEST_ANALYZER_WORKERS", runtime.GOMAXPROCS(0)),
			ReferencePath:   getEnv("INGEST_REFERENCE_PATH", ""),
		},
		Storage: StorageConfig{
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Watch: WatchConfig{
			Schedule:        getEnv("WATCH_SCHEDULE", "*/5 * * * *"),
			OutputDir:       getEnv("WATCH_OUTPUT_DIR", "./parsed"),
			SourceID:        getEnv("WATCH_SOURCE_ID", "inbox"),
			DeleteProcessed: getEnvAsBool("WATCH_DELETE_PROCESSED", false),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}
	if c.Ingest.MaxFileSize <= 0 {
		errs = append(errs, errors.New("INGEST_MAX_FILE_SIZE must be positive"))
	}
	if c.Ingest.AnalyzerWorkers < 1 {
		errs = append(errs, errors.New("INGEST_ANALYZER_WORKERS must be at least 1"))
	}
	if c.Storage.LocalPath == "" {
		errs = append(errs, errors.New("STORAGE_LOCAL_PATH is required"))
	}
	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("WATCH_SCHEDULE: %w", err))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
