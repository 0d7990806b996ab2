// Package config loads gateway configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all gateway configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Terminal TerminalConfig
	Web      WebConfig
	Storage  StorageConfig
	Logging  LogConfig
}

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Host    string `envconfig:"HOST" default:"127.0.0.1"`
	Port    string `envconfig:"PORT" default:"8049"`
	Workdir string `envconfig:"WORKDIR" default:""`
}

// AuthConfig holds authentication configuration. Password is mandatory:
// the gateway refuses to start without one.
type AuthConfig struct {
	Password   string        `envconfig:"AUTH_PASSWORD"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`
}

// TerminalConfig holds shell session configuration.
type TerminalConfig struct {
	Shell          string `envconfig:"TERMINAL_SHELL" default:""`
	Cols           uint16 `envconfig:"TERM_COLS" default:"120"`
	Rows           uint16 `envconfig:"TERM_ROWS" default:"32"`
	BufferMaxChars int    `envconfig:"TERM_BUFFER_MAX_CHARS" default:"200000"`
}

// WebConfig holds headless browser session configuration.
type WebConfig struct {
	MaxSessions int `envconfig:"WEB_MAX_SESSIONS" default:"6"`
	FPS         int `envconfig:"WEB_FPS" default:"8"`
	JPEGQuality int `envconfig:"WEB_JPEG_QUALITY" default:"70"`
}

// StorageConfig holds workspace persistence configuration.
type StorageConfig struct {
	DBPath string `envconfig:"DB_PATH" default:"data/gateway.db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables and applies
// fallbacks that envconfig tags cannot express.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Password == "" {
		return nil, errors.New("AUTH_PASSWORD is required, refusing to start")
	}

	if cfg.Server.Workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workdir: %w", err)
		}
		cfg.Server.Workdir = wd
	}

	if cfg.Terminal.Shell == "" {
		cfg.Terminal.Shell = os.Getenv("SHELL")
	}
	if cfg.Terminal.Shell == "" {
		cfg.Terminal.Shell = "/bin/bash"
	}

	return &cfg, nil
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// FrameInterval returns the tick interval for the frame capture loop,
// floored at 60ms to keep a runaway FPS setting from spinning.
func (w WebConfig) FrameInterval() time.Duration {
	fps := w.FPS
	if fps < 1 {
		fps = 1
	}
	interval := time.Second / time.Duration(fps)
	if interval < 60*time.Millisecond {
		interval = 60 * time.Millisecond
	}
	return interval
}

// MinFramePeriod returns the minimum time between two successful captures
// for one session. Frame requests arriving faster than this are coalesced.
func (w WebConfig) MinFramePeriod() time.Duration {
	if w.FPS <= 0 {
		return 150 * time.Millisecond
	}
	return time.Second / time.Duration(w.FPS)
}
