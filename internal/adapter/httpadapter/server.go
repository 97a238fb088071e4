package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/session"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the API handlers read from.
type Deps struct {
	Store    *snapshot.Store
	Sessions *session.Manager
	Metrics  *observability.Metrics
	// Clock supplies "today" when a request does not pin a date. Nil uses the real clock.
	Clock clockwork.Clock
}

// Server exposes health, readiness, metrics and the styling API.
type Server struct {
	httpServer *http.Server
	api        *api
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    &api{deps: deps, logger: logger},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/style", s.api.handleStyle)
	mux.HandleFunc("POST /api/v1/styles", s.api.handleStyles)
	mux.HandleFunc("GET /api/v1/superregions", s.api.handleSuperRegions)
	mux.HandleFunc("GET /api/v1/overlay", s.api.handleOverlay)
	mux.HandleFunc("GET /api/v1/maxima", s.api.handleMaxima)
	mux.HandleFunc("GET /api/v1/legend", s.api.handleLegend)
	mux.HandleFunc("GET /api/v1/filters", s.api.handleFilters)
	mux.HandleFunc("POST /api/v1/sessions", s.api.handleCreateSession)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/filter", s.api.handleSetSessionFilter)
	mux.HandleFunc("POST /api/v1/sessions/{id}/centers", s.api.handleSessionCenters)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.api.handleDeleteSession)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
