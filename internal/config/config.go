package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	APIBaseURL  string
	WSURL       string
	DBFile      string
	HTTPTimeout time.Duration
	HistoryTTL  time.Duration
}

func Load() (*Config, error) {
	httpTimeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	historyTTL, err := time.ParseDuration(getEnv("HISTORY_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_TTL: %w", err)
	}

	cfg := &Config{
		APIBaseURL:  getEnv("BOLTALKA_API", "http://localhost:8080"),
		WSURL:       getEnv("BOLTALKA_WS", "ws://localhost:8080/ws"),
		DBFile:      getEnv("BOLTALKA_DB", "boltalka.db"),
		HTTPTimeout: httpTimeout,
		HistoryTTL:  historyTTL,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.WSURL, "ws://") && !strings.HasPrefix(c.WSURL, "wss://") {
		return fmt.Errorf("BOLTALKA_WS must be a ws:// or wss:// URL")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be greater than 0")
	}

	if c.HistoryTTL <= 0 {
		return fmt.Errorf("HISTORY_TTL must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
