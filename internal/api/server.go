package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/pipeline"
	"github.com/dgallion1/texsite/internal/storage"
)

// Server is the preview and rebuild HTTP server.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        storage.ExportStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. store may be nil when
// no SQLite export is configured.
func NewServer(orch *pipeline.Orchestrator, store storage.ExportStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        store,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/data", s.handleData)
	r.Get("/api/documents", s.handleDocuments)
	r.Get("/api/questions", s.handleQuestions)
	r.Get("/api/stats/rows", s.handleRowStats)
	r.Get("/api/stats/kinds", s.handleKindStats)

	// Rebuilds need the API key.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/build", s.handleBuild)
		r.Get("/api/build/{jobID}/status", s.handleBuildStatus)
	})

	// Everything else is the built site.
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.SiteDir)))

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
