package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	Env             string
	APIKey          string
	CallbackURL     string
	CallbackTimeout time.Duration
	NatsURL         string
	NatsToken       string
	DatabaseURL     string
	LogLevel        string
	SlackBotToken   string
	SlackChannel    string
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	ExtractCache    int
}

// Load reads the environment. A .env file in the working directory, when
// present, fills in variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            envInt("LURE_PORT", 8760),
		Env:             envStr("LURE_ENV", "dev"),
		APIKey:          envStr("LURE_API_KEY", ""),
		CallbackURL:     envStr("CALLBACK_URL", ""),
		CallbackTimeout: envDuration("CALLBACK_TIMEOUT", 8*time.Second),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_ALERTS_CHANNEL", ""),
		SessionTTL:      envDuration("SESSION_TTL", 6*time.Hour),
		SweepInterval:   envDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		ExtractCache:    envInt("EXTRACT_CACHE_SIZE", 1024),
	}
}

// Debug reports whether the debug routes are mounted.
func (c Config) Debug() bool {
	return c.Env != "prod"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(n * float64(time.Second))
	}
	return fallback
}
