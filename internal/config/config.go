// internal/config/config.go

// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	LockerLocal = "local"
	LockerRedis = "redis"
)

type Config struct {
	Port     string       `env:"PORT" envDefault:"8080"`
	LogLevel logrus.Level `env:"LOG_LEVEL" envDefault:"info"`

	GameStore   string `env:"GAME_STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`

	RoomLocker   string        `env:"ROOM_LOCKER" envDefault:"local"`
	RoomLeaseTTL time.Duration `env:"ROOM_LEASE_TTL" envDefault:"5s"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	HistorianQueueName     string        `env:"HISTORIAN_QUEUE_NAME"`
	HistorianBatchSize     int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlushInterval time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`
	GameInactivityTimeout  time.Duration `env:"GAME_INACTIVITY_TIMEOUT" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.GameStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("GAME_STORE=%s requires DATABASE_URL", c.GameStore)
		}
	default:
		return fmt.Errorf("unknown GAME_STORE %q", c.GameStore)
	}

	switch c.RoomLocker {
	case LockerLocal:
	case LockerRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("ROOM_LOCKER=%s requires REDIS_ADDR", c.RoomLocker)
		}
	default:
		return fmt.Errorf("unknown ROOM_LOCKER %q", c.RoomLocker)
	}

	if c.HistorianBatchSize <= 0 {
		return fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", c.HistorianBatchSize)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
