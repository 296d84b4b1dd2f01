package config

import (
	"os"
	"strconv"
	"strings"

	"godisso/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Paths      PathConfig
	Assessment AssessmentConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. Persistence is
// optional: an empty URL runs the service without a repository.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// DSN returns the connection string with the configured sslmode applied,
// unless the URL already pins one.
func (d DatabaseConfig) DSN() string {
	if d.URL == "" || d.SSLMode == "" || strings.Contains(d.URL, "sslmode=") {
		return d.URL
	}
	sep := "?"
	if strings.Contains(d.URL, "?") {
		sep = "&"
	}
	return d.URL + sep + "sslmode=" + d.SSLMode
}

// PathConfig holds file system paths
type PathConfig struct {
	// WorkbookFile is the default dissolution workbook for the CLI.
	WorkbookFile string
}

// AssessmentConfig holds the numerical defaults of the MCR procedure
type AssessmentConfig struct {
	Alpha         float64
	Tolerance     float64
	MaxIterations int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Paths: PathConfig{
			WorkbookFile: getEnvOrDefault("WORKBOOK_FILE", ""),
		},
		Assessment: AssessmentConfig{
			Alpha:         getEnvFloatOrDefault("MCR_ALPHA", 0.05),
			Tolerance:     getEnvFloatOrDefault("MCR_TOLERANCE", 1e-9),
			MaxIterations: getEnvIntOrDefault("MCR_MAX_ITERATIONS", 100),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if !(config.Assessment.Alpha > 0 && config.Assessment.Alpha < 1) {
		return errors.ConfigInvalid("MCR_ALPHA must be in (0,1)")
	}
	if config.Assessment.Tolerance <= 0 {
		return errors.ConfigInvalid("MCR_TOLERANCE must be positive")
	}
	if config.Assessment.MaxIterations < 1 {
		return errors.ConfigInvalid("MCR_MAX_ITERATIONS must be a positive integer")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
