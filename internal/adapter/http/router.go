package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerbook/internal/adapter/http/handler"
	"github.com/iho/ledgerbook/internal/adapter/http/middleware"
	"github.com/iho/ledgerbook/internal/infrastructure/metrics"
	"github.com/iho/ledgerbook/internal/usecase"
)

// RouterConfig holds dependencies for the router. Everything below
// HealthHandler is optional.
type RouterConfig struct {
	ClientHandler   *handler.ClientHandler
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	HistoryHandler  *handler.HistoryHandler
	LedgerHandler   *handler.LedgerHandler
	ExchangeHandler *handler.ExchangeHandler
	HealthHandler   *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			opts := []middleware.IdempotencyOption{middleware.WithIdempotencyLogger(cfg.Logger)}
			if cfg.Metrics != nil {
				opts = append(opts, middleware.WithReplayCounter(cfg.Metrics.IdempotentReplays))
			}
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, opts...).Wrap)
		}

		// Clients
		r.Route("/clients", func(r chi.Router) {
			r.Post("/", cfg.ClientHandler.Create)
			r.Get("/", cfg.ClientHandler.List)
			r.Get("/{id}", cfg.ClientHandler.Get)
			r.Delete("/{id}", cfg.ClientHandler.Delete)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{number}", cfg.AccountHandler.Get)
			r.Get("/{number}/transactions", cfg.HistoryHandler.ListByAccount)
			r.Get("/{number}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
		})

		r.Post("/transfers", cfg.TransferHandler.Create)
		r.Get("/transactions", cfg.HistoryHandler.List)

		// Ledger
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/reconciliation", cfg.LedgerHandler.Report)
		})

		// Exchange
		r.Get("/export", cfg.ExchangeHandler.Export)
		r.Post("/import", cfg.ExchangeHandler.Import)
	})

	return r
}
