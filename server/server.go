// Package server exposes the comparison UI and JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/newscompare/newscompare/pkg/config"
	"github.com/newscompare/newscompare/pkg/content"
	"github.com/newscompare/newscompare/pkg/domain"
	"github.com/newscompare/newscompare/pkg/feed"
	"github.com/newscompare/newscompare/pkg/render"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Comparator runs one request against both providers
type Comparator interface {
	Run(ctx context.Context, req domain.QueryRequest) (stories, research domain.ProviderResult)
}

// Sampler backs the Randomize action
type Sampler interface {
	Sample(tax domain.Taxonomy) string
	Pick(vals []string) string
}

// Fetcher is a single provider fetch, used for the RSS export
type Fetcher interface {
	Fetch(ctx context.Context, req domain.QueryRequest) ([]domain.NewsItem, error)
}

// Extractor pulls readable text from an article URL
type Extractor interface {
	Extract(ctx context.Context, url string) (*content.Article, error)
}

// Server represents HTTP server instance
type Server struct {
	cfg        *config.Config
	comparator Comparator
	sampler    Sampler
	stories    Fetcher
	extractor  Extractor
	renderer   *render.Renderer
	rssGen     *feed.Generator
	templates  *template.Template
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// New initializes a new server instance
func New(cfg *config.Config, comparator Comparator, smplr Sampler, stories Fetcher, extractor Extractor, version string, debug bool) *Server {
	s := &Server{
		cfg:        cfg,
		comparator: comparator,
		sampler:    smplr,
		stories:    stories,
		extractor:  extractor,
		renderer:   render.New(cfg.Query.MaxItemsRendered, cfg.Query.ExcerptLimit),
		rssGen:     feed.NewGenerator(cfg.Server.BaseURL),
		templates:  template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.cfg.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newscompare", "newscompare", s.version))
	s.router.Use(rest.Ping)

	// optional gating login, only when users are configured
	if len(s.cfg.Auth.Users) > 0 {
		s.router.Use(rest.BasicAuth(func(user, passwd string) bool {
			expected, ok := s.cfg.Auth.Users[user]
			return ok && expected == passwd
		}))
	}

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// UI routes
	s.router.HandleFunc("GET /{$}", s.indexHandler)
	s.router.HandleFunc("POST /compare", s.compareHandler)
	s.router.HandleFunc("GET /randomize", s.randomizeHandler)

	// RSS export of the stories provider
	s.router.HandleFunc("GET /rss", s.rssHandler)

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /compare", s.compareAPIHandler)
		r.HandleFunc("GET /random-category", s.randomCategoryHandler)
		r.HandleFunc("GET /extract", s.extractHandler)
	})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
