package notebench

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/notebench/internal/platform"
	"github.com/aretw0/notebench/pkg/backend"
	"github.com/aretw0/notebench/pkg/core"
)

// --- Configuration ---

// Option defines a functional option for configuring notebench.
type Option = platform.Option

// Executor runs request work for a backend and must be stopped when done.
type Executor = platform.Executor

// WithAdapter selects the store by name: "memory" (default), "fs" or "mongo".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger for the store and the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom store.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithDatabase names the mongo database.
func WithDatabase(name string) Option {
	return platform.WithDatabase(name)
}

// WithConnectTimeout bounds the initial mongo connection.
func WithConnectTimeout(d time.Duration) Option {
	return platform.WithConnectTimeout(d)
}

// WithFormat selects the file format of new notes in the fs store.
func WithFormat(ext string) Option {
	return platform.WithFormat(ext)
}

// WithSystemDir names the fs store's internal directory, relative to its root.
func WithSystemDir(dir string) Option {
	return platform.WithSystemDir(dir)
}

// WithWatch keeps the fs index cache in sync with external edits.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithMustExist requires the fs data directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the temp-dir sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a notes service on top of a freshly initialized store.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, uri, opts...)
}

// Init builds and initializes a store explicitly.
func Init(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	return platform.Init(ctx, uri, opts...)
}

// Close releases the resources held by a store.
func Close(ctx context.Context, repo core.Repository) error {
	return platform.Close(ctx, repo)
}

// NewBackend wires svc to the executor of flavor ("go" or "eventloop").
func NewBackend(ctx context.Context, flavor string, svc *core.Service, logger *slog.Logger) (backend.Backend, Executor, error) {
	return platform.NewBackend(ctx, flavor, svc, logger)
}
