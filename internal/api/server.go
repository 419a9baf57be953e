package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/karnell/boxlens/internal/config"
	"github.com/karnell/boxlens/internal/geom"
	"github.com/karnell/boxlens/internal/overlay"
	"github.com/karnell/boxlens/internal/raster"
	"github.com/karnell/boxlens/internal/session"
	"github.com/karnell/boxlens/internal/upstream"
)

// Backend is the slice of the extraction API the handlers consume.
// *upstream.Client implements it.
type Backend interface {
	overlay.Source
	Chunks(ctx context.Context, doc string) (*upstream.ChunksResult, error)
	Elements(ctx context.Context, doc string, ids []string) (map[string]geom.Element, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	router   chi.Router
	backend  Backend
	sessions *session.Registry
	renderer *overlay.Renderer
	raster   *raster.Controller
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(backend Backend, sessions *session.Registry, rast *raster.Controller, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		backend:  backend,
		sessions: sessions,
		renderer: overlay.NewRenderer(backend, overlay.NewSnapshot(), rast, log),
		raster:   rast,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overlay/{doc}", s.handleOverlay)
		r.Get("/hierarchy/{doc}", s.handleHierarchy)
		r.Get("/pages/{doc}", s.handlePages)
		r.Get("/chunks/{doc}/pages", s.handleChunkPages)
		r.Get("/chunks/{doc}/preview", s.handleChunkPreview)

		r.Post("/session", s.handleCreateSession)
		r.Get("/session/{sessionID}", s.handleGetSession)
		r.Put("/session/{sessionID}", s.handleUpdateSession)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
