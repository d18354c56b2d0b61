package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/notebench/pkg/adapters/fs"
	"github.com/aretw0/notebench/pkg/adapters/memory"
	"github.com/aretw0/notebench/pkg/adapters/mongo"
	"github.com/aretw0/notebench/pkg/core"
)

// DefaultDatabase is the mongo database used when none is configured.
const DefaultDatabase = "notes"

// Init builds and initializes a store.
// The 'uri' argument is adapter-specific: ignored for memory, a directory for
// fs, a connection string for mongo.
func Init(ctx context.Context, uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	switch o.adapter {
	case AdapterMemory:
		repo = memory.NewRepository()
	case AdapterFS:
		repo = initFS(uri, o)
	case AdapterMongo:
		repo = initMongo(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}

	if watch, _ := o.config["watch"].(bool); watch {
		fsRepo, ok := repo.(*fs.Repository)
		if !ok {
			return nil, fmt.Errorf("adapter %s does not support watching", o.adapter)
		}
		if err := fsRepo.Watch(ctx); err != nil {
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
	}

	return repo, nil
}

// initFS handles path resolution and configuration of the filesystem adapter.
func initFS(path string, o *options) core.Repository {
	format, _ := o.config["format"].(string)
	systemDir, _ := o.config["system_dir"].(string)
	mustExist, _ := o.config["must_exist"].(bool)

	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	useTemp := devSafety && IsDevRun()
	resolved := ResolveDataPath(path, useTemp)
	if useTemp && o.logger != nil && resolved != path {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolved)
	}

	return fs.NewRepository(fs.Config{
		Path:      resolved,
		Format:    format,
		SystemDir: systemDir,
		MustExist: mustExist,
		Logger:    o.logger,
	})
}

func initMongo(uri string, o *options) core.Repository {
	database, _ := o.config["database"].(string)
	if database == "" {
		database = DefaultDatabase
	}
	timeout, _ := o.config["connect_timeout"].(time.Duration)

	return mongo.NewRepository(mongo.Config{
		URI:            uri,
		Database:       database,
		ConnectTimeout: timeout,
		Logger:         o.logger,
	})
}

// Close releases whatever the store holds (connections, watchers).
func Close(ctx context.Context, repo core.Repository) error {
	if closer, ok := repo.(core.Closer); ok {
		return closer.Close(ctx)
	}
	return nil
}
