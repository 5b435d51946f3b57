package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the Prometheus instruments for catalog evaluations and
// replay runs.
type Metrics struct {
	BatchTotal    *prometheus.CounterVec   // labels: indicator
	BatchErrors   *prometheus.CounterVec   // labels: indicator, kind
	BatchDur      *prometheus.HistogramVec // labels: indicator
	StepDur       prometheus.Histogram
	StepsTotal    prometheus.Counter
	Mismatches    *prometheus.CounterVec // labels: indicator
	SnapshotBytes prometheus.Gauge
	RingOverflow  prometheus.Counter
}

// NewMetrics creates the instruments and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacore_batch_total",
			Help: "Batch evaluations run",
		}, []string{"indicator"}),
		BatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacore_batch_errors_total",
			Help: "Batch evaluations rejected, by error kind",
		}, []string{"indicator", "kind"}),
		BatchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tacore_batch_duration_seconds",
			Help:    "Batch evaluation latency over a whole series",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"indicator"}),
		StepDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tacore_step_duration_seconds",
			Help:    "Incremental step latency per bar across all indicators",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tacore_steps_total",
			Help: "Incremental steps taken",
		}),
		Mismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tacore_replay_mismatches_total",
			Help: "Positions where incremental and batch output disagreed",
		}, []string{"indicator"}),
		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tacore_snapshot_bytes",
			Help: "Size of the last replay checkpoint",
		}),
		RingOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tacore_ringbuf_overflow_total",
			Help: "Bars the replay feeder had to retry on a full queue",
		}),
	}

	reg.MustRegister(
		m.BatchTotal,
		m.BatchErrors,
		m.BatchDur,
		m.StepDur,
		m.StepsTotal,
		m.Mismatches,
		m.SnapshotBytes,
		m.RingOverflow,
	)

	return m
}

// ObserveBatch records one batch evaluation. kind is "" on success.
func (m *Metrics) ObserveBatch(indicator, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.BatchTotal.WithLabelValues(indicator).Inc()
	m.BatchDur.WithLabelValues(indicator).Observe(d.Seconds())
	if kind != "" {
		m.BatchErrors.WithLabelValues(indicator, kind).Inc()
	}
}

// ObserveStep records one bar stepped through every configured indicator.
func (m *Metrics) ObserveStep(d time.Duration) {
	if m == nil {
		return
	}
	m.StepsTotal.Inc()
	m.StepDur.Observe(d.Seconds())
}

// Probe reports whether one dependency answers.
type Probe func(ctx context.Context) error

// PingRedis probes a Redis client.
func PingRedis(rdb *goredis.Client) Probe {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

// PingSQL probes a database handle.
func PingSQL(db *sql.DB) Probe {
	return db.PingContext
}

type probeResult struct {
	OK        bool    `json:"ok"`
	LatencyMs float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// HealthStatus tracks the stores a long-running command depends on. With
// no probes registered it is always healthy.
type HealthStatus struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	results map[string]probeResult
	last    time.Time
	started time.Time
}

// NewHealthStatus returns an empty health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		probes:  make(map[string]Probe),
		results: make(map[string]probeResult),
		started: time.Now(),
	}
}

// Register adds a named probe. It is not run until Check.
func (h *HealthStatus) Register(name string, p Probe) {
	h.mu.Lock()
	h.probes[name] = p
	h.mu.Unlock()
}

// Check runs every probe once and records the outcome.
func (h *HealthStatus) Check(ctx context.Context) {
	h.mu.RLock()
	probes := make(map[string]Probe, len(h.probes))
	for name, p := range h.probes {
		probes[name] = p
	}
	h.mu.RUnlock()

	results := make(map[string]probeResult, len(probes))
	for name, p := range probes {
		start := time.Now()
		err := p(ctx)
		r := probeResult{OK: err == nil, LatencyMs: float64(time.Since(start).Microseconds()) / 1000.0}
		if err != nil {
			r.Error = err.Error()
			zap.L().Warn("health probe failed", zap.String("probe", name), zap.Error(err))
		}
		results[name] = r
	}

	h.mu.Lock()
	for name, r := range results {
		h.results[name] = r
	}
	h.last = time.Now()
	h.mu.Unlock()
}

// Healthy reports whether every registered probe passed its last check.
// A probe that has never run counts as failing.
func (h *HealthStatus) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for name := range h.probes {
		if !h.results[name].OK {
			return false
		}
	}
	return true
}

// StartLivenessChecker re-runs Check every interval until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				h.Check(probeCtx)
				cancel()
			}
		}
	}()
}

// ServeHTTP handles /healthz: 200 when healthy, 503 otherwise.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	healthy := h.Healthy()

	h.mu.RLock()
	body := struct {
		Status    string                 `json:"status"`
		Uptime    string                 `json:"uptime"`
		Probes    map[string]probeResult `json:"probes"`
		LastCheck string                 `json:"last_check_at,omitempty"`
	}{
		Status: "healthy",
		Uptime: time.Since(h.started).Round(time.Second).String(),
		Probes: make(map[string]probeResult, len(h.results)),
	}
	for name, res := range h.results {
		body.Probes[name] = res
	}
	if !h.last.IsZero() {
		body.LastCheck = h.last.Format(time.RFC3339)
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		body.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server over the given registry.
func NewServer(addr string, reg *prometheus.Registry, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		zap.L().Info("metrics server listening", zap.String("addr", s.addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			zap.L().Error("metrics server error", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		zap.L().Warn("metrics server shutdown", zap.Error(err))
	}
}
