// Package app wires configuration, storage, providers and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptoconvert/config"
	"cryptoconvert/internal/affiliate"
	"cryptoconvert/internal/api"
	"cryptoconvert/internal/cache"
	"cryptoconvert/internal/forms"
	"cryptoconvert/internal/market"
	"cryptoconvert/internal/notify"
	"cryptoconvert/internal/retention"
	"cryptoconvert/internal/stream"
	"cryptoconvert/pkg/coingecko"
	"cryptoconvert/pkg/exchangerate"
	"cryptoconvert/pkg/storage/postgres"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger

	db     *postgres.PostgresClient
	redis  *redis.Client
	hub    *stream.Hub
	pruner *retention.MidnightPruner
	server *http.Server
}

// New connects to the database (and Redis when configured) and builds every
// service. Nothing runs until Run is called.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := postgres.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	a := &App{cfg: cfg, logger: logger, db: db}

	backend, err := a.cacheBackend()
	if err != nil {
		db.Close()
		return nil, err
	}
	c := cache.New(backend,
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithLogger(logger.Named("cache")),
		cache.WithSingleFlight(cfg.Cache.SingleFlight),
	)

	cgOpts := []coingecko.Option{coingecko.WithUserAgent(cfg.CoinGecko.UserAgent)}
	if cfg.CoinGecko.APIKey != "" {
		cgOpts = append(cgOpts, coingecko.WithAPIKey(cfg.CoinGecko.APIKey))
	}
	coins := coingecko.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.Timeout, cgOpts...)
	rates := exchangerate.NewClient(cfg.ExchangeRates.URL, cfg.ExchangeRates.Timeout)

	marketSvc := market.NewService(c, coins, rates, market.WithLogger(logger.Named("market")))
	formSvc := forms.NewService(db, notify.New(cfg.Telegram, logger), logger.Named("forms"))
	affiliateSvc := affiliate.NewService(db)

	var prices http.Handler
	if cfg.Stream.Enabled {
		a.hub = stream.NewHub(marketSvc, logger.Named("stream"),
			stream.WithInterval(cfg.Stream.Interval),
			stream.WithLimit(cfg.Stream.Limit),
		)
		prices = a.hub
	}

	a.pruner = &retention.MidnightPruner{
		Store:  db,
		Days:   cfg.Affiliate.ClickRetentionDays,
		Logger: logger.Named("retention"),
	}

	handler := api.NewHandler(logger.Named("api"), marketSvc, formSvc, affiliateSvc, db)
	a.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewServer(logger.Named("http"), handler, prices),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// cacheBackend returns the Redis backend when configured and reachable, and
// the in-process map otherwise.
func (a *App) cacheBackend() (cache.Backend, error) {
	switch a.cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryBackend(), nil
	case "redis":
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", a.cfg.Cache.Backend)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Warn("redis unreachable, using in-memory cache", zap.String("addr", a.cfg.Redis.Addr), zap.Error(err))
		client.Close()
		return cache.NewMemoryBackend(), nil
	}

	a.redis = client
	// Entries outlive the TTL a little so Redis reclaims them after they go stale.
	return cache.NewRedisBackend(client, a.cfg.Redis.KeyPrefix, 2*a.cfg.Cache.TTL), nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down http server")
		return a.server.Shutdown(shutdownCtx)
	})

	if a.hub != nil {
		g.Go(func() error {
			a.hub.Run(gctx)
			return nil
		})
	}
	a.pruner.Start(gctx)

	return g.Wait()
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
}
