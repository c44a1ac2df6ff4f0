// Package fakeapi is an in-memory rendition of the line-of-business backend.
// It speaks the same envelope contract as the real service and backs the
// client tests, examples/ and "bizctl fake-server".
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fivetwenty-io/bizapi/internal/constants"
)

// Roles known to the fixture backend.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// SessionLifetime is how long an issued token stays valid.
const SessionLifetime = 8 * time.Hour

// Server serves a Dataset over HTTP.
type Server struct {
	mutex    sync.RWMutex
	data     *Dataset
	sessions map[string]session

	staticToken    string
	requireAuth    bool
	allowedOrigins []string
	maxPageSize    int
	now            func() time.Time

	handler http.Handler
}

type session struct {
	userID    string
	expiresAt time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithStaticToken accepts token as an admin credential without signing in.
func WithStaticToken(token string) Option {
	return func(s *Server) {
		s.staticToken = token
	}
}

// WithoutAuth disables bearer checks on every route.
func WithoutAuth() Option {
	return func(s *Server) {
		s.requireAuth = false
	}
}

// WithAllowedOrigins restricts CORS to origins. The default allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxPageSize sets the largest pageSize a list request may ask for.
// Values below 1 keep the default of constants.DefaultMaxPageSize.
func WithMaxPageSize(size int) Option {
	return func(s *Server) {
		if size >= 1 {
			s.maxPageSize = size
		}
	}
}

// WithClock replaces the time source used for sessions and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server over data. A nil dataset serves SeedDataset(25).
func New(data *Dataset, opts ...Option) *Server {
	if data == nil {
		data = SeedDataset(seedDefaultCount)
	}

	server := &Server{
		data:           data,
		sessions:       make(map[string]session),
		requireAuth:    true,
		allowedOrigins: []string{"*"},
		maxPageSize:    constants.DefaultMaxPageSize,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(server)
	}

	server.handler = server.routes()

	return server
}

const seedDefaultCount = 25

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", map[string]string{"status": "up"})
	})

	mux.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.wrap(s.login))

		api.Group(func(protected chi.Router) {
			protected.Use(s.authenticate)

			protected.Post("/auth/logout", s.wrap(s.logout))
			protected.Get("/auth/me", s.wrap(s.currentUser))

			mountResource(protected, s, productResource)
			mountResource(protected, s, orderResource)
			mountResource(protected, s, customerResource)
			mountResource(protected, s, userResource)
			mountResource(protected, s, agentRequestResource)
			mountResource(protected, s, commissionResource)

			protected.Get("/reports/sales", s.wrap(s.salesReport))
		})
	})

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})

	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("fake API server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutting down fake API server: %w", err)
	}

	return nil
}
