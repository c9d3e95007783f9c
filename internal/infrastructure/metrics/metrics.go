package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	PostingsCommitted prometheus.Counter
	PostingDuration   prometheus.Histogram
	PostingAmount     prometheus.Histogram
	PostingErrors     *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Idempotency metrics
	IdempotentReplays prometheus.Counter
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Posting metrics
		PostingsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_postings_committed_total",
			Help: "Total number of committed postings",
		}),
		PostingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerbook_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerbook_posting_amount",
			Help:    "Posted amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostingErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_posting_errors_total",
				Help: "Total number of rejected or failed postings by kind",
			},
			[]string{"kind"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerbook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerbook_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_idempotent_replays_total",
			Help: "Total responses replayed from the idempotency store",
		}),
	}
}

// PostingSucceeded implements usecase.PostingMetrics.
func (m *Metrics) PostingSucceeded(amount decimal.Decimal, duration time.Duration) {
	m.PostingsCommitted.Inc()
	m.PostingDuration.Observe(duration.Seconds())
	m.PostingAmount.Observe(amount.InexactFloat64())
}

// PostingFailed implements usecase.PostingMetrics.
func (m *Metrics) PostingFailed(kind string) {
	m.PostingErrors.WithLabelValues(kind).Inc()
}
