/**
 * Configuration for intake-router
 *
 * Loads configuration from environment variables matching .env
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration for the ingest-and-routing pipeline.
type Config struct {
	// Filesystem layout; each directory defaults to a subdirectory of Root
	// unless set individually in the environment
	Root               string
	IntakeDir          string
	FullyIndexedDir    string
	PartiallyIndexedDir string
	FailedDir          string

	// OCR engine
	TesseractPaths []string // candidate install paths probed in order at startup
	RasterizerPath string   // external PDF->image utility
	RasterizerDPI  int

	// Watcher timing (§4.7 / §5)
	DebounceInterval   time.Duration
	SettleDelay        time.Duration
	ReadProbeRetries   int
	ReadProbeInterval  time.Duration
	StaleSweepInterval time.Duration

	// Event sink
	SinkMode    string // "redis", "postgres", or "log"
	RedisURL    string
	DatabaseURL string

	LogLevel string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	root := getEnvOrDefault("INTAKE_ROOT", "/var/lib/intake-router")

	cfg := &Config{
		Root:                root,
		IntakeDir:           getEnvOrDefault("INTAKE_DIR", joinRoot(root, "incoming-scan")),
		FullyIndexedDir:     getEnvOrDefault("FULLY_INDEXED_DIR", joinRoot(root, "fully_indexed")),
		PartiallyIndexedDir: getEnvOrDefault("PARTIALLY_INDEXED_DIR", joinRoot(root, "partially_indexed")),
		FailedDir:           getEnvOrDefault("FAILED_DIR", joinRoot(root, "failed")),
		TesseractPaths: []string{
			getEnvOrDefault("TESSERACT_PATH", ""),
			"/usr/bin/tesseract",
			"/usr/local/bin/tesseract",
			"/opt/homebrew/bin/tesseract",
		},
		RasterizerPath:     getEnvOrDefault("RASTERIZER_PATH", "pdftoppm"),
		RasterizerDPI:      getEnvAsIntOrDefault("RASTERIZER_DPI", 300),
		DebounceInterval:   getEnvAsDurationOrDefault("DEBOUNCE_INTERVAL_MS", 500*time.Millisecond),
		SettleDelay:        getEnvAsDurationOrDefault("SETTLE_DELAY_MS", 5*time.Second),
		ReadProbeRetries:   getEnvAsIntOrDefault("READ_PROBE_RETRIES", 10),
		ReadProbeInterval:  getEnvAsDurationOrDefault("READ_PROBE_INTERVAL_MS", 500*time.Millisecond),
		StaleSweepInterval: getEnvAsDurationOrDefault("STALE_SWEEP_INTERVAL_MS", 2*time.Minute),
		SinkMode:           getEnvOrDefault("SINK_MODE", "log"),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", ""),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration is internally consistent.
func (c *Config) Validate() error {
	if c.IntakeDir == "" {
		return fmt.Errorf("INTAKE_DIR is required")
	}

	if c.FullyIndexedDir == "" || c.PartiallyIndexedDir == "" || c.FailedDir == "" {
		return fmt.Errorf("all three output bucket directories are required")
	}

	if c.DebounceInterval <= 0 {
		return fmt.Errorf("DEBOUNCE_INTERVAL_MS must be positive, got %s", c.DebounceInterval)
	}

	if c.ReadProbeRetries < 1 {
		return fmt.Errorf("READ_PROBE_RETRIES must be at least 1, got %d", c.ReadProbeRetries)
	}

	switch c.SinkMode {
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SINK_MODE=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SINK_MODE=postgres")
		}
	case "log":
		// no external dependency required
	default:
		return fmt.Errorf("SINK_MODE must be one of redis|postgres|log, got %q", c.SinkMode)
	}

	return nil
}

// ResolvedTesseractPath returns the first candidate path that exists on
// disk, or the bare command name if none do, leaving resolution to the OS
// search path.
func (c *Config) ResolvedTesseractPath() string {
	for _, p := range c.TesseractPaths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return "tesseract"
}

func joinRoot(root, sub string) string {
	if root == "" {
		return sub
	}
	return root + "/" + sub
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	ms, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return time.Duration(ms) * time.Millisecond
}
