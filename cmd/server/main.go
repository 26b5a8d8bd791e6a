// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/loveletter/internal/cache"
	"github.com/jason-s-yu/loveletter/internal/config"
	"github.com/jason-s-yu/loveletter/internal/database"
	"github.com/jason-s-yu/loveletter/internal/game"
	"github.com/jason-s-yu/loveletter/internal/handlers"
	"github.com/jason-s-yu/loveletter/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(stdout)
	logger.SetLevel(cfg.LogLevel)

	checks := map[string]handlers.Checker{}
	var opts []game.Option
	var handlerOpts []handlers.HandlerOption

	// --- Storage ---
	var repo game.Repository = game.NewMemoryStore()
	if cfg.GameStore == config.StorePostgres {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		games := database.NewGameRepository(pool)
		users := database.NewUserDirectory(pool)
		repo = games
		opts = append(opts, game.WithNameLookup(users))
		handlerOpts = append(handlerOpts,
			handlers.WithUsers(users),
			handlers.WithResults(games),
			handlers.WithHistory(database.NewActionLog(pool)),
		)
		checks["postgres"] = pgChecker{pool}
		logger.Info("using postgres game store")
	}

	// --- Redis ---
	hub := handlers.NewHub(logger)
	publishers := game.Publishers{hub}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		publishers = append(publishers, cache.NewActionPublisher(rdb, cfg.HistorianQueueName))
		if cfg.RoomLocker == config.LockerRedis {
			opts = append(opts, game.WithLocker(cache.NewRedisLocker(rdb, cfg.RoomLeaseTTL, logger)))
		}
		checks["redis"] = redisChecker{rdb}
		logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")
	}
	opts = append(opts, game.WithPublisher(publishers))

	engine := game.NewEngine(nil, logger, 0)
	svc := game.NewService(engine, repo, logger, opts...)

	// --- HTTP ---
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Get("/healthz", handlers.HealthHandler(logger, checks))
	r.Mount("/rooms", handlers.NewRoomHandler(svc, hub, logger, handlerOpts...).Routes())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

type pgChecker struct{ pool *pgxpool.Pool }

func (p pgChecker) Check(ctx context.Context) error { return p.pool.Ping(ctx) }

type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
