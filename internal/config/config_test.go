package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8080/ws", cfg.ServerURL)
	assert.Equal(t, "WARRIOR", cfg.PlayerClass)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ARENA_SERVER_URL", "wss://arena.example.com/ws")
	t.Setenv("ARENA_PLAYER_NAME", "Aria")
	t.Setenv("ARENA_PLAYER_CLASS", "RANGER")
	t.Setenv("ARENA_RECONNECT_DELAY", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wss://arena.example.com/ws", cfg.ServerURL)
	assert.Equal(t, "Aria", cfg.PlayerName)
	assert.Equal(t, "RANGER", cfg.PlayerClass)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("ARENA_TICK_INTERVAL", "not-a-duration")
	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "mystery"}.SlogLevel())
}
