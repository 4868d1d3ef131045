// Package server serves the to-do collection contract (GET/POST /todos)
// over a store.Backend. It exists for local development and tests.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/idilsaglam/todos/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Token       string   // when set, requests must carry it as a bearer token
	CORSOrigins []string // empty allows any origin
	Logger      *log.Logger
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	store  store.Store
	token  string
	logger *log.Logger
	router chi.Router
}

// New wires routes and middleware around s.
func New(s store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	srv := &Server{
		store:  s,
		token:  opts.Token,
		logger: opts.Logger,
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(srv.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(c.Handler)
	r.Use(srv.requireToken)

	r.Get("/todos", srv.listTodos)
	r.Post("/todos", srv.createTodo)

	srv.router = r
	return srv
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(sctx)
	}
}
