package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/indexer"
	"github.com/apsscout/pagetree/internal/retrieval"
	"github.com/apsscout/pagetree/internal/tree"
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Ingester builds document indexes.
type Ingester interface {
	Ingest(ctx context.Context, pages []tree.PageContent, docID, docName string, force bool) (*indexer.BuildResult, error)
}

// Searcher answers queries against a built index.
type Searcher interface {
	Retrieve(ctx context.Context, index *tree.DocumentIndex, query string, topK int) (*retrieval.Result, error)
	BatchRetrieve(ctx context.Context, index *tree.DocumentIndex, questions []retrieval.Question) (map[aps.Category]*retrieval.Result, error)
}

// IndexStore reads and lists persisted indexes.
type IndexStore interface {
	LoadIndex(ctx context.Context, docID string) (*tree.DocumentIndex, error)
	ListDocIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, docID string) error
}

// Server exposes ingestion and retrieval over HTTP.
type Server struct {
	cfg        Config
	ingester   Ingester
	searcher   Searcher
	store      IndexStore
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. logger may be nil.
func New(cfg Config, ingester Ingester, searcher Searcher, store IndexStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	s := &Server{
		cfg:      cfg,
		ingester: ingester,
		searcher: searcher,
		store:    store,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/healthz", health)
	r.Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/ask", s.handleRetrieve)
		r.Post("/batch", s.handleBatchRetrieve)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{docID}", s.handleGetDocument)
		r.Delete("/documents/{docID}", s.handleDeleteDocument)
	})

	return r
}

// Router returns the chi router, primarily for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("pagetree server listening", zap.String("addr", s.cfg.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
