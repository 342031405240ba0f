// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/address"
	"studio/internal/retry"
)

type Config struct {
	// Network passphrase ( mainnet or testnet ), seeds address derivation
	NetworkPassphrase string

	// Account that administers the master factory and, through it, every
	// factory the master deploys
	AdminAddress string

	// Postgres mirror; empty keeps the mirror in memory
	DatabaseURL string

	// HTTP query API
	APIPort int

	// debug, info, warn or error
	LogLevel string

	// Bootstrap manifest (YAML or JSON); empty starts with an empty master
	ManifestPath string

	// Size of the event queue between the factories and the services
	EventQueueSize int

	Retry retry.Config
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		NetworkPassphrase: getEnv("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		AdminAddress:      getEnv("ADMIN_ADDRESS", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		APIPort:           getEnvAsInt("API_PORT", 8080),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ManifestPath:      getEnv("MANIFEST_PATH", ""),
		EventQueueSize:    getEnvAsInt("EVENT_QUEUE_SIZE", 256),
		Retry: retry.Config{
			Enabled:      getEnvAsBool("RETRY_ENABLED", true),
			MaxRetries:   getEnvAsInt("RETRY_MAX_RETRIES", 5),
			InitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", 500*time.Millisecond),
			MaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", 30*time.Second),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("NETWORK_PASSPHRASE is required")
	}
	if c.AdminAddress == "" {
		return fmt.Errorf("ADMIN_ADDRESS is required")
	}
	if _, err := address.Parse(c.AdminAddress); err != nil {
		return fmt.Errorf("ADMIN_ADDRESS: %w", err)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.EventQueueSize <= 0 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be positive")
	}
	if c.Retry.Enabled && c.Retry.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must not be negative")
	}
	return nil
}

// Admin returns the parsed admin address. Call Validate first.
func (c *Config) Admin() address.Address {
	return address.Address(c.AdminAddress)
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return val
}

// getEnvAsDuration accepts Go durations ("750ms") or whole seconds ("2").
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
