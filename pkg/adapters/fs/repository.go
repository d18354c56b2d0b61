// Package fs stores notes as individual files in a directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"

	"github.com/aretw0/notebench/pkg/core"
)

// DefaultSystemDir holds the index cache inside the notes directory.
const DefaultSystemDir = ".notebench"

// Repository implements core.Repository using one file per note.
type Repository struct {
	Path        string
	config      Config
	cache       *cache
	serializers map[string]Serializer

	mu            sync.RWMutex
	watcher       *watchWorker
	watcherActive bool
	lastEviction  *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	Format    string // Extension used for new notes: ".json" (default), ".yaml", ".cbor"
	SystemDir string // e.g. ".notebench"
	MustExist bool
	Logger    *slog.Logger
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Format == "" {
		config.Format = ".json"
	}
	if !strings.HasPrefix(config.Format, ".") {
		config.Format = "." + config.Format
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:        config.Path,
		config:      config,
		cache:       newCache(config.Path, config.SystemDir),
		serializers: DefaultSerializers(),
	}
}

// RegisterSerializer adds or replaces the serializer for an extension.
func (r *Repository) RegisterSerializer(ext string, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[ext] = s
}

// Initialize creates the notes directory, or checks it exists when MustExist is set.
func (r *Repository) Initialize(ctx context.Context) error {
	if _, ok := r.serializer(r.config.Format); !ok {
		return fmt.Errorf("unsupported note format: %s", r.config.Format)
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("notes path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("notes path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	return nil
}

// Insert assigns a ULID and writes the note atomically in the configured format.
func (r *Repository) Insert(ctx context.Context, n core.Note) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}

	s, ok := r.serializer(r.config.Format)
	if !ok {
		return core.Note{}, fmt.Errorf("unsupported note format: %s", r.config.Format)
	}

	n.ID = ulid.Make().String()
	data, err := s.Marshal(n)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to serialize note: %w", err)
	}

	name := n.ID + r.config.Format
	fullPath := filepath.Join(r.Path, name)
	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return core.Note{}, fmt.Errorf("failed to write note: %w", err)
	}

	if info, err := os.Stat(fullPath); err == nil {
		r.cache.Set(name, &indexEntry{Note: n, LastModified: info.ModTime()})
	}
	return n, nil
}

// Get looks up the note file for id in any supported format.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return core.Note{}, fmt.Errorf("%w: %q", core.ErrInvalidID, id)
	}
	canonical := parsed.String()

	for _, ext := range r.extensions() {
		s, ok := r.serializer(ext)
		if !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.Path, canonical+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return core.Note{}, fmt.Errorf("failed to read note %s: %w", id, err)
		}
		n, err := s.Unmarshal(data)
		if err != nil {
			return core.Note{}, fmt.Errorf("failed to parse note %s: %w", id, err)
		}
		n.ID = canonical
		return n, nil
	}
	return core.Note{}, core.ErrNotFound
}

// List scans the directory for all notes.
//
// Strategy:
//  1. Load the index cache from disk.
//  2. Glob for files with a supported extension.
//  3. For each file, reuse the cached note when its mtime is unchanged, otherwise decode it.
//  4. Prune vanished entries and save the cache back.
//
// Notes are returned sorted by id, which for ULIDs is creation order.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	if err := r.cache.Load(); err != nil {
		r.config.Logger.Warn("failed to load index cache", "error", err)
	}

	matches, err := doublestar.Glob(os.DirFS(r.Path), r.pattern())
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes: %w", err)
	}

	notes := make([]core.Note, 0, len(matches))
	seen := make(map[string]bool, len(matches))

	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := filepath.Ext(name)
		id := strings.TrimSuffix(name, ext)
		if _, err := ulid.ParseStrict(id); err != nil {
			r.config.Logger.Debug("skipping foreign file", "name", name)
			continue
		}

		info, err := os.Stat(filepath.Join(r.Path, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		seen[name] = true

		if entry, ok := r.cache.Get(name, info.ModTime()); ok {
			notes = append(notes, entry.Note)
			continue
		}

		n, err := r.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			// Removed since the glob, or named in a case Get does not resolve.
			continue
		}
		if err != nil {
			return nil, err
		}
		r.cache.Set(name, &indexEntry{Note: n, LastModified: info.ModTime()})
		notes = append(notes, n)
	}

	r.cache.Prune(seen)
	if err := r.cache.Save(); err != nil {
		r.config.Logger.Warn("failed to save index cache", "error", err)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

// Watch starts a background worker that evicts cached entries for files changed
// outside this process. It stops when ctx is cancelled or Close is called.
func (r *Repository) Watch(ctx context.Context) error {
	r.mu.Lock()
	if r.watcher != nil {
		r.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w := newWatchWorker(r)
	r.watcher = w
	r.mu.Unlock()

	if err := w.Start(ctx); err != nil {
		r.mu.Lock()
		r.watcher = nil
		r.mu.Unlock()
		return err
	}
	return nil
}

// Close stops the watcher, if any, and flushes the index cache.
func (r *Repository) Close(ctx context.Context) error {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	var errs []error
	if w != nil {
		errs = append(errs, w.Stop(ctx))
	}
	errs = append(errs, r.cache.Save())
	return errors.Join(errs...)
}

// evict drops the cache entry for a file name touched on disk.
func (r *Repository) evict(name string) {
	if !r.cache.Delete(name) {
		return
	}
	r.mu.Lock()
	now := time.Now()
	r.lastEviction = &now
	r.mu.Unlock()
	r.config.Logger.Debug("evicted cached note", "name", name)
}

func (r *Repository) serializer(ext string) (Serializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[ext]
	return s, ok
}

// extensions returns the supported extensions, the configured format first.
func (r *Repository) extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.serializers))
	for ext := range r.serializers {
		if ext != r.config.Format {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return append([]string{r.config.Format}, exts...)
}

// pattern builds a glob matching every supported note file, e.g. "*.{cbor,json,yaml,yml}".
func (r *Repository) pattern() string {
	exts := r.extensions()
	for i, ext := range exts {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	sort.Strings(exts)
	return "*.{" + strings.Join(exts, ",") + "}"
}

func (r *Repository) supported(name string) bool {
	_, ok := r.serializer(filepath.Ext(name))
	return ok
}
