package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "github.com/socialgate/socialgate/internal/errors"
	"github.com/socialgate/socialgate/internal/observability"
	"github.com/socialgate/socialgate/internal/server/handlers"
	servermw "github.com/socialgate/socialgate/internal/server/middleware"
)

// Options wires the gateway and the HTTP policies into the router.
type Options struct {
	// Gateway serves /api/{platform}. Without it only the operational
	// routes are mounted.
	Gateway handlers.Dispatcher

	CORS         servermw.CORSOptions
	InboundLimit servermw.InboundLimitOptions

	// AdminToken enables POST /admin/signal when set.
	AdminToken string

	// MetricsPort is the exporter port /metrics proxies to when the
	// exporter has not reported one.
	MetricsPort int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the gateway's HTTP front end.
type Server struct {
	router *chi.Mux
	server *http.Server
	host   string
	port   int
	opts   Options
}

// New builds the router: request id, metrics and panic recovery on every
// route, CORS and the inbound limit on /api.
func New(host string, port int, opts Options) *Server {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		host:   host,
		port:   port,
		opts:   opts,
	}

	handlers.SetHTTPErrorResponder(HandleError)
	handlers.SetPlatformErrorResponder(HandlePlatformError)

	s.registerRoutes()
	return s
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  durationOr(s.opts.ReadTimeout, 30*time.Second),
		WriteTimeout: durationOr(s.opts.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(s.opts.IdleTimeout, 120*time.Second),
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.host),
			zap.Int("port", s.port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Port() int {
	return s.port
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
