package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the slidecast server.
type Config struct {
	DeckPath       string
	DBPath         string
	ServerPort     int
	LogLevel       string
	CodeStyle      string
	WrapNavigation bool
	SentryDSN      string
	Environment    string
	ShutdownGrace  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	RateLimitTTL   time.Duration
}

const (
	defaultDeckPath       = "./slides.md"
	defaultDBPath         = "./data/slidecast.db"
	defaultServerPort     = 8080
	defaultLogLevel       = "info"
	defaultCodeStyle      = "monokai"
	defaultEnvironment    = "development"
	defaultShutdownGrace  = 10 * time.Second
	defaultRateLimitRPS   = 20.0
	defaultRateLimitBurst = 40
	defaultRateLimitTTL   = 10 * time.Minute
)

// Load reads configuration values from environment variables, applying
// defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DeckPath:       getEnv("DECK_PATH", defaultDeckPath),
		DBPath:         getEnv("DB_PATH", defaultDBPath),
		LogLevel:       getEnv("LOG_LEVEL", defaultLogLevel),
		CodeStyle:      getEnv("CODE_STYLE", defaultCodeStyle),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		Environment:    getEnv("ENV", defaultEnvironment),
		ShutdownGrace:  defaultShutdownGrace,
		RateLimitRPS:   defaultRateLimitRPS,
		RateLimitBurst: defaultRateLimitBurst,
		RateLimitTTL:   defaultRateLimitTTL,
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if wrapValue := os.Getenv("WRAP_NAVIGATION"); wrapValue != "" {
		wrap, err := strconv.ParseBool(wrapValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid WRAP_NAVIGATION value: %s", wrapValue)
		}
		cfg.WrapNavigation = wrap
	}

	if graceValue := os.Getenv("SHUTDOWN_GRACE"); graceValue != "" {
		grace, err := time.ParseDuration(graceValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid SHUTDOWN_GRACE value: %s", graceValue)
		}
		cfg.ShutdownGrace = grace
	}

	if rpsValue := os.Getenv("RATE_LIMIT_RPS"); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", rpsValue)
		}
		cfg.RateLimitRPS = rps
	}

	if burstValue := os.Getenv("RATE_LIMIT_BURST"); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", burstValue)
		}
		cfg.RateLimitBurst = burst
	}

	if ttlValue := os.Getenv("RATE_LIMIT_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_TTL value: %s", ttlValue)
		}
		cfg.RateLimitTTL = ttl
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
