// Package config loads client settings from the environment. A local .env
// file is applied first via the godotenv autoload import.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	ServerURL   string `env:"ARENA_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	PlayerName  string `env:"ARENA_PLAYER_NAME" envDefault:"adventurer"`
	PlayerClass string `env:"ARENA_PLAYER_CLASS" envDefault:"WARRIOR"`

	TickInterval   time.Duration `env:"ARENA_TICK_INTERVAL" envDefault:"50ms"`
	PingInterval   time.Duration `env:"ARENA_PING_INTERVAL" envDefault:"15s"`
	ConnectTimeout time.Duration `env:"ARENA_CONNECT_TIMEOUT" envDefault:"5s"`
	ReconnectDelay time.Duration `env:"ARENA_RECONNECT_DELAY" envDefault:"5s"`

	MoveRateLimit int `env:"ARENA_MOVE_RATE_LIMIT" envDefault:"20"`

	LogLevel string `env:"ARENA_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.PlayerName == "" {
		return Config{}, fmt.Errorf("player name must not be empty")
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level, defaulting to
// info for anything unrecognized.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
