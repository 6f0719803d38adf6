// Package httpapi is the HTTP surface: JSON record endpoints under /api/v1,
// health checks and Prometheus metrics.
package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router http.ServeMux with request logging
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler registers an http.Handler (promhttp)
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// ServeHTTP logs every request at debug and failed ones (>= 400) at warn
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(rec, req)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(start)),
	}
	if rec.status >= http.StatusBadRequest {
		r.logger.Warn("Request failed", fields...)
		return
	}
	r.logger.Debug("Request", fields...)
}

// allow rejects every method but the listed ones with 405
func allow(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		for _, m := range methods {
			if req.Method == m {
				h(w, req)
				return
			}
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RegisterOpsRoutes /healthz and /metrics
func (r *Router) RegisterOpsRoutes(h *OpsHandler) {
	r.Handle("/healthz", allow(h.Health, http.MethodGet, http.MethodHead))
	r.HandleHandler("/metrics", h.Metrics())
}
