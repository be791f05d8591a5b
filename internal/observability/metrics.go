package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	dbConnectionPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_connection_pool_stats",
			Help: "Database connection pool statistics (total, idle, acquired)",
		},
		[]string{"state"},
	)

	sessionLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_lookups_total",
			Help: "Session registry lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of unexpired sessions in the registry",
		},
	)

	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	circuitBreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestLatency)
	prometheus.MustRegister(dbConnectionPoolStats)
	prometheus.MustRegister(sessionLookups)
	prometheus.MustRegister(sessionsActive)
	prometheus.MustRegister(circuitBreakerState)
	prometheus.MustRegister(circuitBreakerTransitions)
}

// Middleware records HTTP request latency labelled by route pattern. It must
// wrap the handler registered on the mux, since the mux sets r.Pattern only on
// the request it dispatches.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriterSpy{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start).Seconds()
		httpRequestLatency.WithLabelValues(r.Method, path, fmt.Sprint(ww.code)).Observe(duration)
	})
}

type responseWriterSpy struct {
	http.ResponseWriter
	code int
}

func (w *responseWriterSpy) WriteHeader(statusCode int) {
	w.code = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Flush lets NDJSON streams through the spy.
func (w *responseWriterSpy) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// StartDBStatsCollector polls pool statistics until ctx is done.
func StartDBStatsCollector(ctx context.Context, dbPool *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			stats := dbPool.Stat()
			dbConnectionPoolStats.WithLabelValues("total").Set(float64(stats.TotalConns()))
			dbConnectionPoolStats.WithLabelValues("idle").Set(float64(stats.IdleConns()))
			dbConnectionPoolStats.WithLabelValues("acquired").Set(float64(stats.AcquiredConns()))

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Active(ctx context.Context) (int64, error)
}

// StartSessionCollector polls counter until ctx is done. Poll failures leave
// the gauge at its last value.
func StartSessionCollector(ctx context.Context, counter SessionCounter, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if n, err := counter.Active(ctx); err == nil {
				sessionsActive.Set(float64(n))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// RecordBreakerTransition is a gobreaker OnStateChange hook body.
func RecordBreakerTransition(name, from, to string, state float64) {
	circuitBreakerState.WithLabelValues(name).Set(state)
	circuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordBreakerState sets the current state of a breaker without counting a transition.
func RecordBreakerState(name string, state float64) {
	circuitBreakerState.WithLabelValues(name).Set(state)
}
