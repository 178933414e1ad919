package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/melodexapp/melodex/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DBPath       string
	InnertubeURL string
	DataAPIURL   string
	DataAPIKey   string
	CallerKey    string // identity hashed into the quota-usage log
	MaxPlaylists int
	LogLevel     string
	LogFormat    string
	CronEnabled  bool
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	maxPlaylists := constants.DefaultMaxPlaylists
	if v := os.Getenv("MAX_PLAYLISTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxPlaylists = n
		}
	}

	return &Config{
		Port:         getEnv("PORT", constants.DefaultPort),
		DBPath:       getEnv("DB_PATH", constants.DefaultDBPath),
		InnertubeURL: getEnv("INNERTUBE_URL", constants.DefaultInnertubeURL),
		DataAPIURL:   getEnv("DATA_API_URL", constants.DefaultDataAPIURL),
		DataAPIKey:   getEnv("DATA_API_KEY", ""),
		CallerKey:    getEnv("CALLER_KEY", "melodex"),
		MaxPlaylists: maxPlaylists,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		CronEnabled:  getEnv("CRON_ENABLED", "true") == "true",
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	for _, u := range []struct{ name, value string }{
		{"INNERTUBE_URL", c.InnertubeURL},
		{"DATA_API_URL", c.DataAPIURL},
	} {
		if u.value == "" {
			errors = append(errors, u.name+" cannot be empty")
			continue
		}
		if _, err := url.Parse(u.value); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", u.name, u.value))
		}
	}

	if c.DataAPIKey == "" {
		errors = append(errors, "DATA_API_KEY cannot be empty")
	}

	if c.MaxPlaylists < 1 {
		errors = append(errors, fmt.Sprintf("MAX_PLAYLISTS must be positive, got: %d", c.MaxPlaylists))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
