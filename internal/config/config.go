// Package config provides application configuration management with support for environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Data         DataConfig
	Invalidation InvalidationConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty auto-detects from environment
}

// DataConfig holds storage path configuration.
type DataConfig struct {
	// BasePath is the root data directory. The badger store lives under
	// {base}/store and the search index under {base}/search.
	BasePath string
}

// InvalidationConfig tunes the cache invalidation fanout worker.
type InvalidationConfig struct {
	// BufferSize is the emit queue depth; emits beyond it are dropped (default: 256)
	BufferSize int
	// RatePerSecond caps outgoing invalidation calls (default: 50)
	RatePerSecond int
	// Burst is the rate limiter burst allowance (default: 10)
	Burst int
}

// StorePath returns the badger database directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.Data.BasePath, "store")
}

// SearchPath returns the search index directory.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// Load reads configuration with precedence:
// 1. Environment variables.
// 2. .env file (path from SUSHE_ENV_FILE, default ".env").
// 3. Default values (lowest priority).
//
// Command-line flags arrive through the environment: the CLI layer sets
// the matching SUSHE_* variables before calling Load, so path expansion
// and validation run in one place.
func Load() (*Config, error) {
	// Load .env file if it exists (silently ignore if not found).
	envFile := getEnvValue("SUSHE_ENV_FILE", ".env")
	_ = loadEnvFile(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getEnvValue("SUSHE_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getEnvValue("SUSHE_LOG_LEVEL", "info"),
			Format: getEnvValue("SUSHE_LOG_FORMAT", ""),
		},
		Data: DataConfig{
			BasePath: getEnvValue("SUSHE_DATA_PATH", ""),
		},
		Invalidation: InvalidationConfig{
			BufferSize:    getIntEnvValue("SUSHE_INVALIDATION_BUFFER", 256),
			RatePerSecond: getIntEnvValue("SUSHE_INVALIDATION_RATE", 50),
			Burst:         getIntEnvValue("SUSHE_INVALIDATION_BURST", 10),
		},
	}

	// Expand and validate the data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("SUSHE_ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Invalidation.BufferSize <= 0 {
		return fmt.Errorf("invalid invalidation buffer size: %d", c.Invalidation.BufferSize)
	}
	if c.Invalidation.RatePerSecond <= 0 || c.Invalidation.Burst <= 0 {
		return errors.New("invalidation rate and burst must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "SuShe", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getEnvValue returns the environment value or the default when unset.
func getEnvValue(envKey, defaultValue string) string {
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntEnvValue returns an int from an env var, or the default.
func getIntEnvValue(envKey string, defaultValue int) int {
	strValue := getEnvValue(envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
