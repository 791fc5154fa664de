package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.AccessTokenTTL)
	}
	if cfg.RateLimitRPS != 20 || cfg.RateLimitBurst != 40 {
		t.Fatalf("unexpected rate limits: %d/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TASKHIVE_LISTEN_ADDR", ":9090")
	t.Setenv("TASKHIVE_LOG_LEVEL", "debug")
	t.Setenv("TASKHIVE_ACCESS_TOKEN_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("env override ignored: %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("env override ignored: %q", cfg.LogLevel)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("env override ignored: %v", cfg.AccessTokenTTL)
	}
}
