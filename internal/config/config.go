// Package config builds the process configuration once at start-up.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingTable is returned when no invoices table name is configured.
var ErrMissingTable = errors.New("TABLE_NAME is required")

// Config holds everything the handlers need from the environment.
type Config struct {
	TableName   string
	Development bool
	DevUserID   string
	UserClaim   string
	PageSize    int32
	Location    *time.Location

	EventsQueueURL   string
	MetricsEnabled   bool
	MetricsNamespace string

	LogLevel  string
	LogFormat string

	RunLocal  bool
	LocalAddr string
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		TableName:        firstEnv("TABLE_NAME", "INVOICES_TABLE"),
		Development:      isDevelopment(),
		DevUserID:        firstEnv("DEV_USER_ID", "userId"),
		UserClaim:        getEnv("JWT_USER_CLAIM", "sub"),
		EventsQueueURL:   os.Getenv("INVOICE_EVENTS_QUEUE_URL"),
		MetricsEnabled:   getBool("METRICS_ENABLED"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "Invoices"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		RunLocal:         getBool("RUN_LOCAL"),
		LocalAddr:        getEnv("LOCAL_ADDR", ":8080"),
	}

	if cfg.TableName == "" {
		return nil, ErrMissingTable
	}

	if v := os.Getenv("INVOICES_PAGE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid INVOICES_PAGE_SIZE %q", v)
		}
		cfg.PageSize = int32(n)
	}

	loc, err := time.LoadLocation(getEnv("INVOICE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// WorkerConfig holds the settings of the invoice events consumer.
type WorkerConfig struct {
	MetricsEnabled   bool
	MetricsNamespace string
	LogLevel         string
	LogFormat        string
	RunLocal         bool
	LocalBody        string
}

// LoadWorker reads the worker configuration from the environment. It never fails.
func LoadWorker() *WorkerConfig {
	return &WorkerConfig{
		MetricsEnabled:   getBool("METRICS_ENABLED"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "Invoices"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		RunLocal:         getBool("RUN_LOCAL"),
		LocalBody:        os.Getenv("LOCAL_SQS_BODY"),
	}
}

func isDevelopment() bool {
	return strings.EqualFold(os.Getenv("NODE_ENV"), "development") ||
		strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
