package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/notebench/pkg/backend"
	"github.com/aretw0/notebench/pkg/core"
	"github.com/aretw0/notebench/pkg/workload"
)

// New creates a notes service on top of a freshly initialized store.
//
//	svc, err := notebench.New(ctx, "./data", notebench.WithAdapter("fs"))
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}

	// Parse options again for the logger used in wiring.
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var svcOpts []core.ServiceOption
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithServiceLogger(o.logger))
	}
	return core.NewService(repo, svcOpts...), nil
}

// Executor runs request work; Stop releases it.
type Executor struct {
	workload.Executor
	stop func(context.Context) error
}

// Stop halts the executor's background goroutine, if it has one.
func (e Executor) Stop(ctx context.Context) error {
	if e.stop == nil {
		return nil
	}
	return e.stop(ctx)
}

// NewExecutor starts the executor for flavor ("go" or "eventloop").
func NewExecutor(ctx context.Context, flavor string, logger *slog.Logger) (Executor, error) {
	switch flavor {
	case workload.FlavorGoroutines, "":
		return Executor{Executor: workload.NewGoroutines()}, nil
	case workload.FlavorEventLoop:
		loop := workload.NewEventLoop(0, logger)
		if err := loop.Start(ctx); err != nil {
			return Executor{}, fmt.Errorf("failed to start event loop: %w", err)
		}
		return Executor{Executor: loop, stop: loop.Stop}, nil
	default:
		return Executor{}, fmt.Errorf("unknown flavor: %s", flavor)
	}
}

// NewBackend wires svc to the executor of flavor. The returned Executor must
// be stopped when the backend is no longer used.
func NewBackend(ctx context.Context, flavor string, svc *core.Service, logger *slog.Logger) (backend.Backend, Executor, error) {
	exec, err := NewExecutor(ctx, flavor, logger)
	if err != nil {
		return nil, Executor{}, err
	}
	return backend.New(svc, exec.Executor), exec, nil
}
