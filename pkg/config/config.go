package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cadence names accepted by the extract configuration.
const (
	CadenceMinute = "minute"
	CadenceDay    = "day"
)

// Config holds all configuration options for the tap
type Config struct {
	// Remote API access
	API APIConfig `yaml:"api" json:"api"`

	// Extraction window settings
	Extract ExtractConfig `yaml:"extract" json:"extract"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration for transient HTTP failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds RetailNext API connection settings
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	AccessKey string        `yaml:"access_key" json:"access_key"`
	SecretKey string        `yaml:"secret_key" json:"secret_key"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// ExtractConfig holds cadence and window seeding settings
type ExtractConfig struct {
	// Cadence is "minute" or "day"
	Cadence string `yaml:"cadence" json:"cadence"`
	// Increment is the window advance per run, in minutes or days
	Increment int `yaml:"increment" json:"increment"`
	// StartDate seeds the first window when no resume state is supplied (RFC3339)
	StartDate string `yaml:"start_date" json:"start_date"`
	// LeafPause is the courtesy pause between leaves on minute cadence
	LeafPause time.Duration `yaml:"leaf_pause" json:"leaf_pause"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds bounded-retry settings for transient failures
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://api.retailnext.net/v1",
			UserAgent: "rntap/1.0",
			Timeout:   30 * time.Second,
		},
		Extract: ExtractConfig{
			Cadence:   CadenceMinute,
			Increment: 15,
			LeafPause: 2 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("RNTAP_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if accessKey := os.Getenv("RNTAP_ACCESS_KEY"); accessKey != "" {
		c.API.AccessKey = accessKey
	}
	if secretKey := os.Getenv("RNTAP_SECRET_KEY"); secretKey != "" {
		c.API.SecretKey = secretKey
	}
	if userAgent := os.Getenv("RNTAP_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}

	if cadence := os.Getenv("RNTAP_CADENCE"); cadence != "" {
		c.Extract.Cadence = cadence
	}
	if increment := os.Getenv("RNTAP_INCREMENT"); increment != "" {
		if val, err := strconv.Atoi(increment); err == nil && val > 0 {
			c.Extract.Increment = val
		}
	}
	if startDate := os.Getenv("RNTAP_START_DATE"); startDate != "" {
		c.Extract.StartDate = startDate
	}

	if rpm := os.Getenv("RNTAP_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if logLevel := os.Getenv("RNTAP_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".rntap.yaml",
		".rntap.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "rntap", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "rntap", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".rntap.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.AccessKey == "" {
		errs = append(errs, errors.New("API access key is required"))
	}
	if c.API.SecretKey == "" {
		errs = append(errs, errors.New("API secret key is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	switch c.Extract.Cadence {
	case CadenceMinute, CadenceDay:
	default:
		errs = append(errs, fmt.Errorf("unknown cadence %q (supported: minute, day)", c.Extract.Cadence))
	}
	if c.Extract.Increment <= 0 {
		errs = append(errs, errors.New("increment must be positive"))
	}
	// StartDate is only needed when no resume state is supplied; the
	// command layer enforces that. Here only the format is checked.
	if c.Extract.StartDate != "" {
		if _, err := time.Parse(time.RFC3339, c.Extract.StartDate); err != nil {
			errs = append(errs, fmt.Errorf("start date must be RFC3339: %w", err))
		}
	}
	if c.Extract.LeafPause < 0 {
		errs = append(errs, errors.New("leaf pause cannot be negative"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// StartTime returns the parsed start date
func (c *Config) StartTime() (time.Time, error) {
	if c.Extract.StartDate == "" {
		return time.Time{}, errors.New("start date is not set")
	}
	return time.Parse(time.RFC3339, c.Extract.StartDate)
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if accessKey, ok := flags["access-key"].(string); ok && accessKey != "" {
		c.API.AccessKey = accessKey
	}
	if secretKey, ok := flags["secret-key"].(string); ok && secretKey != "" {
		c.API.SecretKey = secretKey
	}
	if userAgent, ok := flags["user-agent"].(string); ok && userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if cadence, ok := flags["cadence"].(string); ok && cadence != "" {
		c.Extract.Cadence = cadence
	}
	if increment, ok := flags["increment"].(int); ok && increment > 0 {
		c.Extract.Increment = increment
	}
	if startDate, ok := flags["start-date"].(string); ok && startDate != "" {
		c.Extract.StartDate = startDate
	}
	if rateLimit, ok := flags["rate-limit"].(int); ok && rateLimit > 0 {
		c.RateLimit.RequestsPerMinute = rateLimit
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".rntap.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
