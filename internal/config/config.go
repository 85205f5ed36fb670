package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// API Configuration
	API APIConfig

	// Probe Configuration
	Probe ProbeConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds remote API configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ProbeConfig holds network probe and backend monitor configuration
type ProbeConfig struct {
	Interval    time.Duration // periodic monitor cadence
	ColdStartUp time.Duration // how long to wait out a backend cold start
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiURL := os.Getenv("BOOKLINE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.bookline.app"
	}

	apiTimeout := durationEnv("BOOKLINE_API_TIMEOUT", 30*time.Second)
	probeInterval := durationEnv("BOOKLINE_PROBE_INTERVAL", 30*time.Second)
	coldStart := durationEnv("BOOKLINE_COLDSTART_WAIT", 2*time.Minute)

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			BaseURL: apiURL,
			Timeout: apiTimeout,
		},
		Probe: ProbeConfig{
			Interval:    probeInterval,
			ColdStartUp: coldStart,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}

// durationEnv reads a duration from the environment, accepting either a
// Go duration string ("45s") or a plain number of seconds ("45").
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
