package config

import (
	"testing"
	"time"
)

func TestLoadRequiresPassword(t *testing.T) {
	t.Setenv("AUTH_PASSWORD", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without AUTH_PASSWORD")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_PASSWORD", "secret")
	t.Setenv("SHELL", "/bin/zsh")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:8049" {
		t.Errorf("unexpected default addr %q", cfg.Server.Addr())
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("unexpected default TTL %v", cfg.Auth.SessionTTL)
	}
	if cfg.Terminal.Shell != "/bin/zsh" {
		t.Errorf("expected $SHELL fallback, got %q", cfg.Terminal.Shell)
	}
	if cfg.Terminal.BufferMaxChars != 200000 {
		t.Errorf("unexpected buffer cap %d", cfg.Terminal.BufferMaxChars)
	}
	if cfg.Web.MaxSessions != 6 {
		t.Errorf("unexpected max sessions %d", cfg.Web.MaxSessions)
	}
	if cfg.Server.Workdir == "" {
		t.Errorf("expected workdir fallback to cwd")
	}
}

func TestFrameInterval(t *testing.T) {
	if got := (WebConfig{FPS: 8}).FrameInterval(); got != 125*time.Millisecond {
		t.Errorf("expected 125ms at 8fps, got %v", got)
	}
	// Runaway FPS is floored
	if got := (WebConfig{FPS: 1000}).FrameInterval(); got != 60*time.Millisecond {
		t.Errorf("expected 60ms floor, got %v", got)
	}
	if got := (WebConfig{FPS: 0}).FrameInterval(); got != time.Second {
		t.Errorf("expected 1s at fps<=0, got %v", got)
	}
}

func TestMinFramePeriod(t *testing.T) {
	if got := (WebConfig{FPS: 8}).MinFramePeriod(); got != 125*time.Millisecond {
		t.Errorf("expected 125ms at 8fps, got %v", got)
	}
	if got := (WebConfig{FPS: 0}).MinFramePeriod(); got != 150*time.Millisecond {
		t.Errorf("expected 150ms fallback, got %v", got)
	}
}
