package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "chitieu/internal/log"
	"chitieu/internal/middleware/ratelimit"
	"chitieu/internal/middleware/security"
	"chitieu/internal/middleware/trace"
)

// WebhookPath receives Telegram updates in webhook mode.
const WebhookPath = "/telegram/webhook"

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// Options wires the server to the rest of the process.
type Options struct {
	// Webhook handles Telegram deliveries. Nil in polling mode.
	Webhook http.Handler
	// Ready is consulted by /readyz. Nil means always ready.
	Ready ReadyCheck
	// RateLimit bounds webhook deliveries per client IP.
	RateLimit ratelimit.Config
	// TrustedProxies are CIDRs, beyond private networks, whose
	// X-Forwarded-For is used for rate limiting and logs.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	ready        ReadyCheck
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	if opts.RateLimit.RequestsPerWindow <= 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	clientIP := security.NewClientIP()
	for _, cidr := range opts.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "error", err)
		}
	}
	s := &Server{
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		ready:   opts.Ready,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	if opts.Webhook != nil {
		mux.Handle("POST "+WebhookPath, s.limiter.Middleware(clientIP.Extract)(opts.Webhook))
	}

	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(trace.RequestID)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = trace.NewMiddleware(clientIP.Extract).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the limiter cleanup routine
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe runs until Shutdown. A clean shutdown is not an error.
func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "component", "http", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
