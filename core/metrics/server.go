package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/scorebot/core/logger"
)

// HealthFunc reports whether dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// Server serves /metrics and /healthz on a side listener.
type Server struct {
	srv *http.Server
}

// Handler builds the router behind the listener.
func Handler(health HealthFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn(ctx, logger.CompApp, "healthz", slog.String("status", "fail"), logger.Err(err))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// NewServer prepares a listener on addr. It does not start serving.
func NewServer(addr string, health HealthFunc) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(health),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	logger.Info(context.Background(), logger.CompApp, "metrics.listen", slog.String("listen", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompApp, "metrics.listen",
				slog.String("status", "fail"),
				slog.String("listen", s.srv.Addr),
				logger.Err(err),
			)
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
