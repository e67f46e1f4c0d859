// Package config loads server settings from the environment, with a .env
// file picked up when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	PingInterval time.Duration // session liveness sweep
	OutboxSize   int           // per-session broadcast buffer
	MatchSeconds int           // default match timer
}

// Load reads KIBALL_* variables, falling back to defaults. A missing .env
// file is fine; explicit environment always wins over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         getString("KIBALL_ADDR", ":8080"),
		PingInterval: getDuration("KIBALL_PING_INTERVAL", 15*time.Second),
		OutboxSize:   getInt("KIBALL_OUTBOX_SIZE", 32),
		MatchSeconds: getInt("KIBALL_MATCH_SECONDS", 120),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
