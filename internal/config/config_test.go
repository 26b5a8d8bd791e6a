// internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "GAME_STORE", "DATABASE_URL", "ROOM_LOCKER", "REDIS_ADDR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.GameStore)
	assert.Equal(t, LockerLocal, cfg.RoomLocker)
	assert.Equal(t, 5*time.Second, cfg.RoomLeaseTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlushInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GAME_STORE", StorePostgres)
	t.Setenv("DATABASE_URL", "postgres://localhost/loveletter")
	t.Setenv("ROOM_LOCKER", LockerRedis)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GAME_INACTIVITY_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 90*time.Second, cfg.GameInactivityTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{GameStore: StoreMemory, RoomLocker: LockerLocal, HistorianBatchSize: 1}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without url", func(c *Config) { c.GameStore = StorePostgres }},
		{"unknown store", func(c *Config) { c.GameStore = "sqlite" }},
		{"redis without addr", func(c *Config) { c.RoomLocker = LockerRedis }},
		{"unknown locker", func(c *Config) { c.RoomLocker = "etcd" }},
		{"empty batches", func(c *Config) { c.HistorianBatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
