package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"DECK_PATH", "DB_PATH", "SERVER_PORT", "LOG_LEVEL", "CODE_STYLE",
		"WRAP_NAVIGATION", "SENTRY_DSN", "ENV", "SHUTDOWN_GRACE",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DeckPath != defaultDeckPath {
		t.Errorf("expected default deck path %q, got %q", defaultDeckPath, cfg.DeckPath)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.CodeStyle != defaultCodeStyle {
		t.Errorf("expected default code style %q, got %q", defaultCodeStyle, cfg.CodeStyle)
	}

	if cfg.WrapNavigation {
		t.Errorf("expected wrap navigation disabled by default")
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Errorf("expected default rate limit rps %v, got %v", defaultRateLimitRPS, cfg.RateLimitRPS)
	}

	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Errorf("expected default rate limit burst %d, got %d", defaultRateLimitBurst, cfg.RateLimitBurst)
	}

	if cfg.SentryDSN != "" {
		t.Errorf("expected empty Sentry DSN, got %q", cfg.SentryDSN)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DECK_PATH", "/talks/lifecycle.md")
	t.Setenv("DB_PATH", "/tmp/slidecast.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CODE_STYLE", "dracula")
	t.Setenv("WRAP_NAVIGATION", "true")
	t.Setenv("SENTRY_DSN", "dsn")
	t.Setenv("ENV", "production")
	t.Setenv("SHUTDOWN_GRACE", "30s")
	t.Setenv("RATE_LIMIT_RPS", "5.5")
	t.Setenv("RATE_LIMIT_BURST", "9")
	t.Setenv("RATE_LIMIT_TTL", "3m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DeckPath != "/talks/lifecycle.md" {
		t.Errorf("expected deck path /talks/lifecycle.md, got %q", cfg.DeckPath)
	}

	if cfg.DBPath != "/tmp/slidecast.db" {
		t.Errorf("expected DB path /tmp/slidecast.db, got %q", cfg.DBPath)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}

	if cfg.CodeStyle != "dracula" {
		t.Errorf("expected code style dracula, got %q", cfg.CodeStyle)
	}

	if !cfg.WrapNavigation {
		t.Errorf("expected wrap navigation enabled")
	}

	if cfg.SentryDSN != "dsn" {
		t.Errorf("expected Sentry DSN dsn, got %q", cfg.SentryDSN)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}

	if cfg.ShutdownGrace != 30*time.Second {
		t.Errorf("expected shutdown grace 30s, got %s", cfg.ShutdownGrace)
	}

	if cfg.RateLimitRPS != 5.5 {
		t.Errorf("expected rate limit rps 5.5, got %v", cfg.RateLimitRPS)
	}

	if cfg.RateLimitBurst != 9 {
		t.Errorf("expected rate limit burst 9, got %d", cfg.RateLimitBurst)
	}

	if cfg.RateLimitTTL != 3*time.Minute {
		t.Errorf("expected rate limit ttl 3m, got %s", cfg.RateLimitTTL)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got %v", err)
	}
}

func TestLoadRejectsInvalidWrap(t *testing.T) {
	clearEnv(t)
	t.Setenv("WRAP_NAVIGATION", "sometimes")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid wrap value")
	}
}

func TestLoadRejectsInvalidShutdownGrace(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_GRACE", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid shutdown grace")
	}
}

func TestLoadRejectsInvalidRateLimitTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_TTL", "forever")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid rate limit ttl")
	}
	if !strings.Contains(err.Error(), "RATE_LIMIT_TTL") {
		t.Errorf("expected error to mention RATE_LIMIT_TTL, got %v", err)
	}
}
