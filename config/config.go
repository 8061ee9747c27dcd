package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix for the TUI settings.
const Prefix = "PRODTUI"

// Config holds the TUI settings, read only from PRODTUI_* variables.
// Command line flags override these.
type Config struct {
	BaseURL  string        `split_words:"true" default:"https://dummyjson.com"`
	Timeout  time.Duration `default:"10s"`
	LogLevel string        `split_words:"true" default:"info"`
	LogFile  string        `split_words:"true"`
}

// Load reads an optional .env file from the working directory, then the
// PRODTUI_* environment.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile()
	}
	return cfg, nil
}

// LoadDotEnv loads ./.env without overriding variables already set.
// A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

// DefaultLogFile keeps logs out of the terminal the TUI draws on.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "prodtui.log")
}
