// Package config loads Extend credentials and client settings from the
// environment, with an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when the API key or secret is not set.
var ErrMissingCredentials = errors.New("EXTEND_API_KEY and EXTEND_API_SECRET must be set")

// Config holds the settings shared by the CLI and integration tests.
type Config struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	// Stage selects the staging endpoint. BaseURL takes precedence.
	Stage   bool          `mapstructure:"stage"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// TestRecipient and TestCardholder are the emails used by the
	// integration tests when issuing cards.
	TestRecipient  string `mapstructure:"test_recipient"`
	TestCardholder string `mapstructure:"test_cardholder"`
}

// Load reads the configuration from EXTEND_* environment variables.
// The given env files (".env" when none are given) are loaded first; missing
// files are skipped and variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("EXTEND")
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return &cfg, ErrMissingCredentials
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv picks it up on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("api_secret", "")
	v.SetDefault("stage", false)
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("test_recipient", "")
	v.SetDefault("test_cardholder", "")
}
