// Package config loads process configuration from the environment.
//
// Grounded on batalabs-muxd/internal/config/config.go and
// nugget-thane-ai-agent/internal/config/config.go: a single struct
// populated from environment variables, with defaults applied and
// validated in one place, rather than scattered os.Getenv calls.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/elifarley/claudish/internal/logging"
)

// Config holds the gateway's process-wide settings.
type Config struct {
	// UpstreamAPIKey is the bearer token sent to the upstream OpenAI-compatible endpoint.
	UpstreamAPIKey string

	// UpstreamBaseURL and UpstreamAPIPath describe the single upstream target
	// this binary forwards every model id to. A full multi-provider model
	// registry is an external collaborator out of scope here, so the
	// resolver main.go builds is intentionally this simple.
	UpstreamBaseURL string
	UpstreamAPIPath string

	// ListenPort is the TCP port the HTTP dispatcher binds to.
	ListenPort string

	// LogLevel is the raw LOG_LEVEL value (debug|info|minimal).
	LogLevel string
}

const (
	defaultPort        = "8090"
	defaultAPIPath     = "/v1/chat/completions"
	defaultUpstreamURL = "https://api.openai.com"
)

// Load reads Config from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		UpstreamAPIKey:  os.Getenv("UPSTREAM_API_KEY"),
		UpstreamBaseURL: os.Getenv("UPSTREAM_BASE_URL"),
		UpstreamAPIPath: os.Getenv("UPSTREAM_API_PATH"),
		ListenPort:      os.Getenv("LISTEN_PORT"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
	}
	if cfg.ListenPort == "" {
		cfg.ListenPort = defaultPort
	}
	if cfg.UpstreamBaseURL == "" {
		cfg.UpstreamBaseURL = defaultUpstreamURL
	}
	if cfg.UpstreamAPIPath == "" {
		cfg.UpstreamAPIPath = defaultAPIPath
	}
	if cfg.UpstreamAPIKey == "" {
		return nil, fmt.Errorf("UPSTREAM_API_KEY must be set")
	}
	return cfg, nil
}

// Level parses the configured LogLevel into an slog.Level.
func (c *Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
