package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notebench/pkg/core"
)

// Store adapter names.
const (
	AdapterMemory = "memory"
	AdapterFS     = "fs"
	AdapterMongo  = "mongo"
)

// options holds the internal configuration for a notebench store.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	config     map[string]interface{}
}

// Option defines a functional option for configuring notebench.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository: nil,
		logger:     nil,
		adapter:    AdapterMemory,
		config:     make(map[string]interface{}),
	}
}

// WithAdapter selects the store by name: "memory" (default), "fs" or "mongo".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger for the store and the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a ready store (e.g. a mock). The adapter is then skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithDatabase names the mongo database. Defaults to "notes".
func WithDatabase(name string) Option {
	return func(o *options) {
		o.config["database"] = name
	}
}

// WithConnectTimeout bounds the initial mongo connection and ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["connect_timeout"] = d
	}
}

// WithFormat selects the file format of new notes in the fs store (".json", ".yaml", ".cbor").
func WithFormat(ext string) Option {
	return func(o *options) {
		o.config["format"] = ext
	}
}

// WithWatch starts the fs watcher that keeps the index cache in sync with
// edits made outside the process.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.config["watch"] = enabled
	}
}

// WithMustExist requires the fs data directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithSystemDir names the hidden directory holding the fs index cache.
// Defaults to ".notebench".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), the fs store is re-rooted into a temporary directory.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
