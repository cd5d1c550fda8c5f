package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"corridord/native/corridor"
	"corridord/observability"
)

// Config defines HTTP server parameters.
type Config struct {
	ListenAddress string
	AdminAddress  [20]byte
	Auth          AuthConfig
	RateLimit     RateLimit
	ShutdownGrace time.Duration
}

// Server hosts the operator, administrative, and query surfaces of the
// corridor engine. The engine itself stays host-agnostic; everything
// HTTP-shaped lives here.
type Server struct {
	cfg     Config
	engine  *corridor.Engine
	logger  *slog.Logger
	metrics *observability.CorridorMetrics
	auth    *Authenticator
	limiter *RateLimiter
}

// New constructs a new HTTP server around the supplied engine.
func New(cfg Config, engine *corridor.Engine, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	auth, err := NewAuthenticator(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("configure admin auth: %w", err)
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	return &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		metrics: observability.Metrics(),
		auth:    auth,
		limiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Router assembles the HTTP routes. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/healthz", otelhttp.NewHandler(http.HandlerFunc(s.handleHealth), "corridord.health"))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Method(http.MethodPost, "/hooks/before-trade", otelhttp.NewHandler(http.HandlerFunc(s.handleBeforeTrade), "corridord.hooks.before"))
		r.Method(http.MethodPost, "/hooks/after-trade", otelhttp.NewHandler(http.HandlerFunc(s.handleAfterTrade), "corridord.hooks.after"))
		r.Method(http.MethodPost, "/intents/settle", otelhttp.NewHandler(http.HandlerFunc(s.handleSettleOne), "corridord.settle"))
		r.Method(http.MethodPost, "/intents/settle-batch", otelhttp.NewHandler(http.HandlerFunc(s.handleSettleBatch), "corridord.settle_batch"))
		r.Method(http.MethodGet, "/intents/{id}", otelhttp.NewHandler(http.HandlerFunc(s.handleGetIntent), "corridord.intent"))
		r.Method(http.MethodGet, "/intents", otelhttp.NewHandler(http.HandlerFunc(s.handleIntentsOf), "corridord.intents"))
		r.Method(http.MethodGet, "/corridors/{id}/fee", otelhttp.NewHandler(http.HandlerFunc(s.handleEffectiveFee), "corridord.fee"))
		r.Method(http.MethodGet, "/corridors/{id}/flow", otelhttp.NewHandler(http.HandlerFunc(s.handleCurrentFlow), "corridord.flow"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.Middleware("corridor.admin"))
		r.Method(http.MethodPost, "/corridors", otelhttp.NewHandler(http.HandlerFunc(s.handleRegisterCorridor), "corridord.admin.register"))
		r.Method(http.MethodPut, "/corridors/{id}/nettable", otelhttp.NewHandler(http.HandlerFunc(s.handleSetNettable), "corridord.admin.nettable"))
		r.Method(http.MethodPut, "/corridors/{id}/fees", otelhttp.NewHandler(http.HandlerFunc(s.handleSetFeeParams), "corridord.admin.fees"))
		r.Method(http.MethodPost, "/corridors/{id}/flow/reset", otelhttp.NewHandler(http.HandlerFunc(s.handleResetFlow), "corridord.admin.reset"))
	})
	return r
}

// Run starts the HTTP server and blocks until context cancellation.
func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server not configured")
	}
	srv := &http.Server{Addr: s.cfg.ListenAddress, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", "address", s.cfg.ListenAddress)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}
