// cmd/historian/main.go

// Command historian drains the game action queue into Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/loveletter/internal/cache"
	"github.com/jason-s-yu/loveletter/internal/config"
	"github.com/jason-s-yu/loveletter/internal/database"
	"github.com/jason-s-yu/loveletter/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" || cfg.RedisAddr == "" {
		return fmt.Errorf("historian needs both DATABASE_URL and REDIS_ADDR")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()

	svc := historian.NewService(
		historian.NewRedisQueue(rdb, cfg.HistorianQueueName),
		database.NewActionLog(pool),
		historian.Config{
			BatchSize:     cfg.HistorianBatchSize,
			FlushInterval: cfg.HistorianFlushInterval,
			Inactivity:    cfg.GameInactivityTimeout,
		},
		logger.WithField("service", "historian"),
	)
	return svc.Run(ctx)
}
