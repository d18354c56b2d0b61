// Package backend expresses the notes-and-benchmarks contract once, independent
// of the transport and of the execution model behind it.
package backend

import (
	"context"
	"fmt"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notebench/pkg/core"
	"github.com/aretw0/notebench/pkg/workload"
)

// MaxConcurrentN caps the units a single concurrent request may launch.
const MaxConcurrentN = 5000

// Backend is the contract every backend flavor satisfies.
type Backend interface {
	Name() string
	CreateNote(ctx context.Context, in core.NoteInput) (core.Note, error)
	ListNotes(ctx context.Context) ([]core.Note, error)
	GetNote(ctx context.Context, id string) (core.Note, error)
	Ping(ctx context.Context) (PingReply, error)
	CPU(ctx context.Context, n int) (CPUReply, error)
	Concurrent(ctx context.Context, n int) (ConcurrentReply, error)
	ProcessJSON(ctx context.Context, items []map[string]any) (JSONReply, error)
}

// PingReply acknowledges a ping and names the backend that answered.
type PingReply struct {
	Message string `json:"message"`
	Backend string `json:"backend"`
}

// CPUReply carries the n-th Fibonacci number.
type CPUReply struct {
	Result  int    `json:"result"`
	N       int    `json:"n"`
	Backend string `json:"backend"`
}

// ConcurrentReply reports how many units were launched and completed.
type ConcurrentReply struct {
	Workers   int    `json:"workers"`
	Completed int    `json:"completed"`
	Backend   string `json:"backend"`
}

// JSONReply echoes the annotated items.
type JSONReply struct {
	Items   int              `json:"items"`
	Backend string           `json:"backend"`
	Data    []map[string]any `json:"data"`
}

// service implements Backend on top of a notes service and an executor.
type service struct {
	notes *core.Service
	exec  workload.Executor
}

// New creates a Backend whose flavor is the executor's name.
func New(notes *core.Service, exec workload.Executor) Backend {
	return &service{notes: notes, exec: exec}
}

func (s *service) Name() string { return s.exec.Name() }

func (s *service) CreateNote(ctx context.Context, in core.NoteInput) (core.Note, error) {
	return s.notes.CreateNote(ctx, in)
}

func (s *service) ListNotes(ctx context.Context) ([]core.Note, error) {
	return s.notes.ListNotes(ctx)
}

func (s *service) GetNote(ctx context.Context, id string) (core.Note, error) {
	return s.notes.GetNote(ctx, id)
}

func (s *service) Ping(ctx context.Context) (PingReply, error) {
	return PingReply{Message: "pong", Backend: s.Name()}, nil
}

func (s *service) CPU(ctx context.Context, n int) (CPUReply, error) {
	if n < 0 {
		return CPUReply{}, fmt.Errorf("%w: n must not be negative", core.ErrBadRequest)
	}
	var result int
	if err := s.exec.Do(ctx, func() { result = workload.Fibonacci(n) }); err != nil {
		return CPUReply{}, err
	}
	return CPUReply{Result: result, N: n, Backend: s.Name()}, nil
}

func (s *service) Concurrent(ctx context.Context, n int) (ConcurrentReply, error) {
	if n < 0 {
		return ConcurrentReply{}, fmt.Errorf("%w: n must not be negative", core.ErrBadRequest)
	}
	if n > MaxConcurrentN {
		return ConcurrentReply{}, fmt.Errorf("%w: n must not exceed %d", core.ErrBadRequest, MaxConcurrentN)
	}
	completed, err := s.exec.Spawn(ctx, n, func(int) {
		workload.Fibonacci(workload.UnitSize)
	})
	if err != nil {
		return ConcurrentReply{}, err
	}
	return ConcurrentReply{Workers: n, Completed: completed, Backend: s.Name()}, nil
}

func (s *service) ProcessJSON(ctx context.Context, items []map[string]any) (JSONReply, error) {
	if items == nil {
		return JSONReply{}, fmt.Errorf("%w: expected array", core.ErrBadRequest)
	}
	if err := s.exec.Do(ctx, func() { workload.Annotate(items) }); err != nil {
		return JSONReply{}, err
	}
	return JSONReply{Items: len(items), Backend: s.Name(), Data: items}, nil
}

// State exposes internal state for observability.
type State struct {
	Flavor  string `json:"flavor"`
	Service any    `json:"service"`
}

// State implements introspection.Introspectable.
func (s *service) State() any {
	return State{Flavor: s.Name(), Service: s.notes.State()}
}

// ComponentType implements introspection.Component.
func (s *service) ComponentType() string {
	return "backend"
}

var _ introspection.Introspectable = (*service)(nil)
var _ introspection.Component = (*service)(nil)
