package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/metrics"
)

// Server wraps the HTTP server
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewRouter wires every route. Snapshot files under dataRoot are served at
// /data/ when dataRoot is set. origin is where this server can reach its own
// /data/ route (see SelfOrigin); empty leaves snapshot fetches on the
// fetcher's public base.
func NewRouter(h *Handler, dataRoot, origin string, logger *zap.Logger, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestContext(origin))
	r.Use(accessLog(logger, m))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	if dataRoot != "" {
		r.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(dataRoot))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", h.ListCompanies)
		r.Get("/companies/catalog", h.CompanyCatalog)
		r.Get("/companies/{code}/profile", h.CompanyProfile)
		r.Get("/yearly-summary", h.YearlySummary)
		r.Get("/yearly-summary/index", h.YearlySummaryIndex)
		r.Get("/leaderboards", h.Leaderboards)
		r.Get("/violations", h.Violations)
		r.Get("/mops/{kind}", h.MOPS)
		r.Get("/system/sync-status", h.SyncStatus)

		if h.watchlist != nil {
			r.Route("/watchlist", func(r chi.Router) {
				r.Get("/", h.Watchlist)
				r.Put("/{code}", h.WatchAdd)
				r.Delete("/{code}", h.WatchRemove)
				r.Post("/{code}/toggle", h.WatchToggle)
			})
		}
		if h.drainer != nil {
			r.Get("/notifications", h.Notifications)
		}
	})

	return r
}

// SelfOrigin returns the loopback origin of a server listening on addr.
// Wildcard and empty hosts map to 127.0.0.1.
func SelfOrigin(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, "80"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// New creates a server for cfg with the given router
func New(cfg config.ServerConfig, router http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening and blocks until the server stops. A graceful
// shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("radar listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down with the given context
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
