// Package config loads fixture generator settings from env and an optional .env file using Viper.
package config

import (
	"errors"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Port is the HTTP port of the web UI.
	Port string `mapstructure:"PORT"`
	// OutputDir receives generated workbooks and verification exports.
	OutputDir string `mapstructure:"FIXTURES_OUTPUT_DIR"`
	// UploadDir receives workbooks uploaded for verification.
	UploadDir string `mapstructure:"FIXTURES_UPLOAD_DIR"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `mapstructure:"FIXTURES_SEED"`
	// NameSource is "list" (fixed lookup lists) or "faker".
	NameSource string `mapstructure:"FIXTURES_NAME_SOURCE"`
	// ThresholdMeters is the geofence radius used when verifying a workbook.
	ThresholdMeters float64 `mapstructure:"FIXTURES_THRESHOLD_METERS"`
	// DatabaseURL is the Postgres DSN used to seed generated persons.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SeedDB inserts generated persons into Postgres after writing the workbook.
	SeedDB bool `mapstructure:"FIXTURES_SEED_DB"`

	LoginUser     string `mapstructure:"LOGIN_USER"`
	LoginPass     string `mapstructure:"LOGIN_PASS"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("PORT", "9595")
	v.SetDefault("FIXTURES_OUTPUT_DIR", "output")
	v.SetDefault("FIXTURES_UPLOAD_DIR", "uploads")
	v.SetDefault("FIXTURES_SEED", 0)
	v.SetDefault("FIXTURES_NAME_SOURCE", "list")
	v.SetDefault("FIXTURES_THRESHOLD_METERS", 2000)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FIXTURES_SEED_DB", false)
	v.SetDefault("LOGIN_USER", "user")
	v.SetDefault("LOGIN_PASS", "")
	v.SetDefault("SESSION_SECRET", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Port == "" {
		return nil, errors.New("config: PORT must be set")
	}
	if cfg.NameSource != "list" && cfg.NameSource != "faker" {
		return nil, errors.New("config: FIXTURES_NAME_SOURCE must be list or faker")
	}
	if cfg.ThresholdMeters <= 0 {
		return nil, errors.New("config: FIXTURES_THRESHOLD_METERS must be positive")
	}
	if cfg.SeedDB && cfg.DatabaseURL == "" {
		return nil, errors.New("config: FIXTURES_SEED_DB requires DATABASE_URL")
	}

	return &cfg, nil
}

// OutputPath joins name onto the output directory.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, filepath.Base(name))
}
