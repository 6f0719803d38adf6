package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger a dependency the health check pings (role handles, redis)
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Check outcome of one ping
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed"`
}

// OpsHandler health and metrics endpoints
type OpsHandler struct {
	checks   map[string]Pinger
	gatherer prometheus.Gatherer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewOpsHandler checks are keyed by the name reported in /healthz
func NewOpsHandler(checks map[string]Pinger, gatherer prometheus.Gatherer, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{checks: checks, gatherer: gatherer, timeout: 3 * time.Second, logger: logger}
}

// Health 200 when every check passes, 503 otherwise
func (h *OpsHandler) Health(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Check, 0, len(names))
	healthy := true
	for _, name := range names {
		start := time.Now()
		c := Check{Name: name, Status: "ok"}
		if err := h.checks[name].Ping(ctx); err != nil {
			healthy = false
			c.Status, c.Error = "down", err.Error()
			h.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
		}
		c.Elapsed = time.Since(start).String()
		results = append(results, c)
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, Fail("degraded", results))
		return
	}
	writeJSON(w, http.StatusOK, Ok(results))
}

// Metrics promhttp handler over the configured gatherer
func (h *OpsHandler) Metrics() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
}
