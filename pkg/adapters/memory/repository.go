// Package memory provides a process-local note store.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/notebench/pkg/core"
)

// Repository implements core.Repository in memory.
// Notes are kept in insertion order and identified by UUIDs.
type Repository struct {
	mu    sync.RWMutex
	notes []core.Note
	index map[string]int
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{index: make(map[string]int)}
}

// Initialize is a no-op for the memory store.
func (r *Repository) Initialize(ctx context.Context) error { return nil }

// Insert assigns a fresh UUID and stores the note.
func (r *Repository) Insert(ctx context.Context, n core.Note) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}

	n.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[n.ID] = len(r.notes)
	r.notes = append(r.notes, n)
	return n, nil
}

// List returns a copy of all notes in insertion order.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Note, len(r.notes))
	copy(out, r.notes)
	return out, nil
}

// Get retrieves a note by UUID.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Note{}, core.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[parsed.String()]
	if !ok {
		return core.Note{}, core.ErrNotFound
	}
	return r.notes[i], nil
}

// Len returns the number of stored notes.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}
