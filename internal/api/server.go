// Package api provides the HTTP API server and handlers for the Connect server.
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	domainerrors "github.com/connectapp/connect-server/internal/errors"
	"github.com/connectapp/connect-server/internal/http/response"
	"github.com/connectapp/connect-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	opts.setDefaults()

	s := &Server{
		store:    st,
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Connect API", "1.0.0")
	humaConfig.Info.Description = "Peer suggestions from shared interest tags."
	humaConfig.Formats = map[string]huma.Format{
		"application/json": jsonFormat,
		"json":             jsonFormat,
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger, s.opts.Metrics))
	s.router.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.HandleError(w, domainerrors.NotFoundf("route %s not found", r.URL.Path), s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerSuggestionRoutes()
	s.registerUserRoutes()
	s.registerTaxonomyRoutes()

	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics.Handler())
	}
}

// jsonFormat encodes API bodies with goccy/go-json.
var jsonFormat = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		return json.NewEncoder(w).Encode(v)
	},
	Unmarshal: json.Unmarshal,
}
