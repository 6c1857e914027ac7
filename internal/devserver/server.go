// Package devserver is a development backend speaking the MoodMuse HTTP
// protocol: account registration and login, catalog recommendations and the
// activity log.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/store"
)

// DefaultAddr is the default listen address; it matches the client's
// default gateway URL.
const DefaultAddr = "localhost:5000"

// Config holds server configuration.
type Config struct {
	Addr      string
	Store     store.Store
	Catalog   *Catalog // nil uses DefaultCatalog
	JWTSecret string
	TokenTTL  time.Duration
}

// Server is the development backend HTTP server.
type Server struct {
	router   chi.Router
	server   *http.Server
	tokens   *TokenIssuer
	handlers *Handlers
}

// NewServer creates a new development server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	catalog := cfg.Catalog
	if catalog == nil {
		var err error
		if catalog, err = DefaultCatalog(); err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
	}

	tokens := NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	router := chi.NewRouter()

	s := &Server{
		router:   router,
		tokens:   tokens,
		handlers: NewHandlers(cfg.Store, catalog, tokens),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(s.authenticate)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlers.Health)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handlers.Register)
		r.Post("/login", s.handlers.Login)
		r.Post("/logout", s.handlers.Logout)
	})

	s.router.Route("/home", func(r chi.Router) {
		r.Post("/", s.handlers.Recommend)
		r.Get("/get_recent_activity", s.handlers.RecentActivity)
		r.Post("/log_activity", s.handlers.LogActivity)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tokens returns the server's token issuer.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	logging.Info().Str("addr", l.Addr().String()).Msg("development backend listening")
	return s.server.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down development backend")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("development backend stopped")
	return nil
}
