package mcpsrv

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qyinm/prodtui/config"
)

// Config holds the MCP server settings, read only from PRODTUI_MCP_* variables.
// The one exception is PORT, read unprefixed so hosting platforms can inject it.
type Config struct {
	Port           string        `split_words:"true" default:"8080"`
	AllowedOrigins []string      `split_words:"true"`
	Stateless      bool          `default:"false"`
	RPS            float64       `default:"2"`
	Burst          int           `default:"5"`
	SessionTimeout time.Duration `split_words:"true" default:"15m"`
	APIKey         string        `split_words:"true"`
	BaseURL        string        `split_words:"true" default:"https://dummyjson.com"`
	Timeout        time.Duration `default:"10s"`
	LogLevel       string        `split_words:"true" default:"info"`
}

const envPrefix = "PRODTUI_MCP"

// LoadConfig reads an optional .env file and the environment.
func LoadConfig() (Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	var port struct {
		Port string `envconfig:"PORT"`
	}
	if err := envconfig.Process("", &port); err == nil && strings.TrimSpace(port.Port) != "" {
		cfg.Port = strings.TrimSpace(port.Port)
	}

	cfg.AllowedOrigins = compact(cfg.AllowedOrigins)
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return cfg, nil
}

func StreamableOptions(cfg Config) *mcp.StreamableHTTPOptions {
	return &mcp.StreamableHTTPOptions{
		Stateless:      cfg.Stateless,
		SessionTimeout: cfg.SessionTimeout,
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
