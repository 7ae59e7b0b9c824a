package api

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dgallion1/creditgest/internal/config"
	"github.com/dgallion1/creditgest/internal/ingest"
	"github.com/dgallion1/creditgest/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server for creditgest.
type Server struct {
	router chi.Router
	ingest *ingest.Service
	store  *store.Store
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *ingest.Service, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ingest: svc,
		store:  st,
		log:    log,
		cfg:    cfg,
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: !slices.Contains(s.cfg.CORSOrigins, "*"),
		MaxAge:           600,
	}))

	// Public endpoints.
	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/upload", s.handleUpload)

		r.Get("/reports", s.handleListReports)
		r.Delete("/reports", s.handleDeleteAllReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/reports/{id}/summary", s.handleReportSummary)
		r.Delete("/reports/{id}", s.handleDeleteReport)

		r.Get("/api/stats/extract", s.handleExtractStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
