// Package server exposes the catalog over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/routerhaus/kitfinder/facet"
	"github.com/routerhaus/kitfinder/models"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Zero values select the defaults.
type Options struct {
	Registry            *facet.Registry
	Logger              *slog.Logger
	Metrics             *Metrics
	CacheSize           int
	RateLimit           float64
	RateBurst           int
	CompareLimit        int
	RecommendationLimit int
	AllowedOrigins      []string
}

// Server holds the loaded catalog and the HTTP router. The catalog is never
// mutated; every request works on its own catalog.State.
type Server struct {
	kits      []models.Kit
	index     map[string]int
	reg       *facet.Registry
	opts      Options
	router    *chi.Mux
	logger    *slog.Logger
	metrics   *Metrics
	cache     *lru.Cache[string, []byte]
	limiter   *KeyedRateLimiter
	validator *Validator
}

// NewServer creates a server over kits with all routes configured.
func NewServer(kits []models.Kit, opts Options) (*Server, error) {
	s := &Server{
		kits:      kits,
		reg:       opts.Registry,
		opts:      opts,
		router:    chi.NewRouter(),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		validator: NewValidator(),
	}
	if s.reg == nil {
		s.reg = facet.Default
	}
	s.index = make(map[string]int, len(kits))
	for i, k := range kits {
		if _, dup := s.index[k.Slug]; !dup {
			s.index[k.Slug] = i
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create response cache: %w", err)
		}
		s.cache = cache
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = NewRateLimiter(opts.RateLimit, burst)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.instrument)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, "not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/kits", s.handleListKits)
		r.Get("/kits/{slug}", s.handleGetKit)
		r.Get("/facets", s.handleFacets)
		r.Post("/quiz", s.handleQuiz)
		r.Get("/compare", s.handleCompare)
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("api server listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
