package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/ledger"
	"github.com/jouleflux/jouleflux/internal/server/middleware"
)

// Server exposes the budget service over HTTP. The ledger is optional: when
// present, /v1/receipts serves the audit trail to the dashboard.
type Server struct {
	httpServer *http.Server
	service    *budget.Service
	ledger     *ledger.Ledger
	logger     *slog.Logger
	version    string
	startedAt  time.Time
	authConfig *middleware.AuthConfig
}

func New(cfg *config.Config, svc *budget.Service, led *ledger.Ledger, logger *slog.Logger, version string) *Server {
	authConfig := &middleware.AuthConfig{
		Enabled:  cfg.Auth.Enabled,
		User:     cfg.Auth.User,
		Password: cfg.Auth.Password,
	}

	s := &Server{
		service:    svc,
		ledger:     led,
		logger:     logger,
		version:    version,
		startedAt:  time.Now(),
		authConfig: authConfig,
	}

	handler := middleware.Chain(
		s.setupRoutes(),
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
		middleware.Auth(authConfig, "/health"),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Agent.Host, cfg.Agent.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ReloadConfig applies the runtime-reloadable subset: auth credentials.
// Sampler constants and the listen address require a restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.authConfig.Enabled = cfg.Auth.Enabled
	s.authConfig.User = cfg.Auth.User
	s.authConfig.Password = cfg.Auth.Password

	s.logger.Info("configuration reloaded", "auth_enabled", cfg.Auth.Enabled)
}

func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
