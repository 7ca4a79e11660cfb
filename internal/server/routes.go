package server

import (
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/observability"
	"github.com/socialgate/socialgate/internal/server/handlers"
	servermw "github.com/socialgate/socialgate/internal/server/middleware"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", s.MetricsHandler)

	s.registerAPIRoutes()
	s.registerAdminEndpoint()
}

// registerAPIRoutes mounts the platform gateway under /api.
func (s *Server) registerAPIRoutes() {
	if s.opts.Gateway == nil {
		return
	}
	ph := handlers.NewPlatformHandler(s.opts.Gateway)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(servermw.CORS(s.opts.CORS))
		r.Use(servermw.InboundLimit(s.opts.InboundLimit))

		r.Get("/platforms", ph.ListPlatforms)
		r.HandleFunc("/{platform}", ph.ServeAction)
	})
}

// registerAdminEndpoint mounts POST /admin/signal when an admin token is set.
func (s *Server) registerAdminEndpoint() {
	logger := observability.ServerLogger
	if s.opts.AdminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no admin token configured)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: s.opts.AdminToken,
		RateLimit: 10,
		RateBurst: 5,
		Manager:   nil,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
