package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Service handles the business logic for notes.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	created int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used to report storage failures.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp new notes.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNote stores a new note. Missing title or content are replaced with
// DefaultTitle and DefaultContent, and both timestamps are set to the
// creation instant.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (Note, error) {
	// Stores keep millisecond precision at best.
	now := s.now().UTC().Truncate(time.Millisecond)

	n := Note{
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Content == "" {
		n.Content = DefaultContent
	}

	stored, err := s.repo.Insert(ctx, n)
	if err != nil {
		return Note{}, s.storageError("create note", err)
	}

	s.mu.Lock()
	s.created++
	s.mu.Unlock()

	return stored, nil
}

// ListNotes retrieves all notes. The result is never nil.
func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("list notes", err)
	}
	if notes == nil {
		notes = []Note{}
	}
	return notes, nil
}

// GetNote retrieves a note by id.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	if id == "" {
		return Note{}, fmt.Errorf("%w: id cannot be empty", ErrInvalidID)
	}
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Note{}, s.storageError("get note", err)
	}
	return n, nil
}

// storageError passes domain errors through and classifies everything else
// as ErrStorageUnavailable.
func (s *Service) storageError(op string, err error) error {
	if IsDomainError(err) {
		return err
	}
	s.logger.Error("storage failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
