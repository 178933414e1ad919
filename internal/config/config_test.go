package config

import (
	"os"
	"testing"

	"github.com/melodexapp/melodex/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.InnertubeURL != constants.DefaultInnertubeURL {
		t.Errorf("Expected InnertubeURL to be %s, got %s", constants.DefaultInnertubeURL, cfg.InnertubeURL)
	}

	if cfg.DataAPIURL != constants.DefaultDataAPIURL {
		t.Errorf("Expected DataAPIURL to be %s, got %s", constants.DefaultDataAPIURL, cfg.DataAPIURL)
	}

	if cfg.MaxPlaylists != constants.DefaultMaxPlaylists {
		t.Errorf("Expected MaxPlaylists to be %d, got %d", constants.DefaultMaxPlaylists, cfg.MaxPlaylists)
	}

	if !cfg.CronEnabled {
		t.Error("Expected CronEnabled to default to true")
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	// Set environment variables
	os.Setenv("PORT", "9090")
	os.Setenv("DB_PATH", "/tmp/test.db")
	os.Setenv("DATA_API_KEY", "secret")
	os.Setenv("MAX_PLAYLISTS", "7")
	os.Setenv("CRON_ENABLED", "false")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_PATH")
		os.Unsetenv("DATA_API_KEY")
		os.Unsetenv("MAX_PLAYLISTS")
		os.Unsetenv("CRON_ENABLED")
	}()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DBPath to be /tmp/test.db, got %s", cfg.DBPath)
	}

	if cfg.DataAPIKey != "secret" {
		t.Errorf("Expected DataAPIKey to be secret, got %s", cfg.DataAPIKey)
	}

	if cfg.MaxPlaylists != 7 {
		t.Errorf("Expected MaxPlaylists to be 7, got %d", cfg.MaxPlaylists)
	}

	if cfg.CronEnabled {
		t.Error("Expected CronEnabled to be false")
	}
}

func validConfig() Config {
	return Config{
		Port:         "8080",
		DBPath:       "test.db",
		InnertubeURL: constants.DefaultInnertubeURL,
		DataAPIURL:   constants.DefaultDataAPIURL,
		DataAPIKey:   "key",
		CallerKey:    "melodex",
		MaxPlaylists: 25,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port - not a number",
			mutate:  func(c *Config) { c.Port = "abc" },
			wantErr: true,
		},
		{
			name:    "invalid port - out of range",
			mutate:  func(c *Config) { c.Port = "99999" },
			wantErr: true,
		},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: true,
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: true,
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.DataAPIKey = "" },
			wantErr: true,
		},
		{
			name:    "empty upstream url",
			mutate:  func(c *Config) { c.InnertubeURL = "" },
			wantErr: true,
		},
		{
			name:    "non-positive playlist ceiling",
			mutate:  func(c *Config) { c.MaxPlaylists = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	// Test with existing env var
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	value := getEnv("TEST_VAR", "default")
	if value != "test_value" {
		t.Errorf("Expected 'test_value', got '%s'", value)
	}

	// Test with non-existing env var
	value = getEnv("NON_EXISTENT_VAR", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}
