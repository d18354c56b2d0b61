// Package api serves the notes and benchmark contract over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aretw0/notebench/pkg/backend"
)

// Server binds a backend to a fiber application.
type Server struct {
	app     *fiber.App
	backend backend.Backend
	config  Config
}

// Config holds the HTTP server configuration.
type Config struct {
	StaticDir string // Served at "/" when set.
	Logger    *slog.Logger
}

// NewServer creates the fiber app and registers every route.
func NewServer(b backend.Backend, config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "notebench-" + b.Name(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{app: app, backend: b, config: config}

	app.Use(requestLogger(config.Logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))

	api := app.Group("/api")
	api.Post("/notes", s.createNote)
	api.Get("/notes", s.listNotes)
	api.Get("/notes/:id", s.getNote)
	api.Get("/ping", s.ping)
	api.Get("/cpu/:n", s.cpu)
	api.Get("/concurrent/:n", s.concurrent)
	api.Post("/json", s.processJSON)
	api.Get("/_state", s.state)

	if config.StaticDir != "" {
		app.Static("/", config.StaticDir)
	}

	return s
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and waits for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		err := s.app.Listener(ln)
		errCh <- err
		return err
	})

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.config.Logger.Info("shutting down", "backend", s.backend.Name())
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// ListenAndServe binds addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.config.Logger.Info("listening", "addr", ln.Addr().String(), "backend", s.backend.Name())
	return s.Serve(ctx, ln)
}

// Snapshot is the body of GET /api/_state.
type Snapshot struct {
	Backend string `json:"backend"`
	Type    string `json:"type"`
	State   any    `json:"state,omitempty"`
}

func (s *Server) snapshot() Snapshot {
	snap := Snapshot{Backend: s.backend.Name(), Type: "backend"}
	if comp, ok := s.backend.(introspection.Component); ok {
		snap.Type = comp.ComponentType()
	}
	if intro, ok := s.backend.(introspection.Introspectable); ok {
		snap.State = intro.State()
	}
	return snap
}
