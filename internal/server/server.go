package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/sidenav/internal/db"
	"github.com/ziadkadry99/sidenav/internal/session"
	"github.com/ziadkadry99/sidenav/internal/site"
)

// Config holds server configuration.
type Config struct {
	Port            int
	SiteDir         string   // directory holding the built site
	AllowAll        bool     // allow all CORS origins (dev mode)
	Include         []string // pages that get the sidebar
	Exclude         []string
	MountSelector   string
	StorageKey      string
	DefaultDocument string
	SessionTTL      time.Duration // idle slots older than this are pruned; 0 keeps them
}

// Server is the preview server. It serves the site and renders the sidebar
// into each page with the requesting browser session's scroll slot.
type Server struct {
	cfg        Config
	db         *db.DB
	sessions   *session.Store
	renderer   *site.Renderer
	router     chi.Router
	httpServer *http.Server

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a new server with all dependencies.
func New(cfg Config, database *db.DB, renderer *site.Renderer) *Server {
	s := &Server{
		cfg:      cfg,
		db:       database,
		sessions: session.NewStore(database),
		renderer: renderer,
		stop:     make(chan struct{}),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware)
		r.Post(ScrollPath, s.handleScroll)
		r.Get("/*", s.handleSite)
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Sessions returns the session slot store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Prune removes session slots idle for longer than the configured TTL.
func (s *Server) Prune(ctx context.Context) (int64, error) {
	if s.cfg.SessionTTL <= 0 {
		return 0, nil
	}
	return s.sessions.PruneBefore(ctx, time.Now().Add(-s.cfg.SessionTTL))
}

// pruneInterval is half the TTL, but never under a second.
func pruneInterval(ttl time.Duration) time.Duration {
	return max(ttl/2, time.Second)
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(pruneInterval(s.cfg.SessionTTL))
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			n, err := s.Prune(context.Background())
			if err != nil {
				log.Printf("pruning sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("pruned %d idle session slots", n)
			}
		}
	}
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.cfg.SessionTTL > 0 {
		go s.pruneLoop()
	}

	log.Printf("sidenav preview listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
