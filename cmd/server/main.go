package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/ledgerbook/internal/adapter/http"
	"github.com/iho/ledgerbook/internal/adapter/http/handler"
	"github.com/iho/ledgerbook/internal/adapter/http/middleware"
	redisRepo "github.com/iho/ledgerbook/internal/adapter/repository/redis"
	"github.com/iho/ledgerbook/internal/app"
	"github.com/iho/ledgerbook/internal/infrastructure/config"
	"github.com/iho/ledgerbook/internal/infrastructure/logger"
	"github.com/iho/ledgerbook/internal/infrastructure/metrics"
	"github.com/iho/ledgerbook/internal/infrastructure/redis"
	"github.com/iho/ledgerbook/internal/usecase"
)

const limiterCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Connect to PostgreSQL
	ledger, pool, err := app.Connect(ctx, cfg, app.Options{
		Logger:         logger,
		Metrics:        m,
		RetryConflicts: cfg.PostingRetryConflicts,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	// Redis is optional; without it Idempotency-Key headers are ignored.
	var (
		redisClient      *goredis.Client
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		logger.Info().Msg("connected to redis")
	}

	rateLimiter := newRateLimiter(cfg, m)
	if rateLimiter != nil {
		go cleanupLimiters(ctx, rateLimiter, limiterCleanupInterval)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ClientHandler:    handler.NewClientHandler(ledger.Registry),
		AccountHandler:   handler.NewAccountHandler(ledger.Registry),
		TransferHandler:  handler.NewTransferHandler(ledger.Posting),
		HistoryHandler:   handler.NewHistoryHandler(ledger.History),
		LedgerHandler:    handler.NewLedgerHandler(ledger.Reconciliation),
		ExchangeHandler:  handler.NewExchangeHandler(ledger.Exchange),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Logger:           logger,
		Metrics:          m,
		Gatherer:         reg,
		RateLimiter:      rateLimiter,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})

	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// serverAddr turns a port, with or without a leading colon, into a listen address.
func serverAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return middleware.NewRateLimiter(cfg.RateLimitRPS, burst).WithHitCounter(m.RateLimitHits)
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}
