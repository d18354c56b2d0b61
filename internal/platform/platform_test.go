package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebench/pkg/adapters/fs"
	"github.com/aretw0/notebench/pkg/adapters/memory"
	"github.com/aretw0/notebench/pkg/core"
	"github.com/aretw0/notebench/pkg/workload"
)

func TestInit_Adapters(t *testing.T) {
	ctx := context.Background()

	repo, err := Init(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &memory.Repository{}, repo)

	dir := t.TempDir()
	repo, err = Init(ctx, dir, WithAdapter(AdapterFS), WithFormat(".yaml"))
	require.NoError(t, err)
	fsRepo, ok := repo.(*fs.Repository)
	require.True(t, ok)
	assert.Equal(t, dir, fsRepo.Path, "temp paths are kept under dev safety")

	_, err = Init(ctx, "", WithAdapter("s3"))
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestInit_InjectedRepository(t *testing.T) {
	injected := memory.NewRepository()
	repo, err := Init(context.Background(), "ignored", WithAdapter("s3"), WithRepository(injected))
	require.NoError(t, err)
	assert.Same(t, injected, repo)
}

func TestInit_MongoWithoutURI(t *testing.T) {
	_, err := Init(context.Background(), "", WithAdapter(AdapterMongo), WithConnectTimeout(time.Second))
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestInit_MustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := Init(context.Background(), missing, WithAdapter(AdapterFS), WithMustExist(true))
	assert.ErrorContains(t, err, "does not exist")
}

func TestInit_WatchRequiresFS(t *testing.T) {
	_, err := Init(context.Background(), "", WithWatch(true))
	assert.ErrorContains(t, err, "does not support watching")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo, err := Init(ctx, t.TempDir(), WithAdapter(AdapterFS), WithWatch(true))
	require.NoError(t, err)

	state := repo.(*fs.Repository).State().(fs.RepositoryState)
	assert.True(t, state.WatcherActive)
	_ = Close(ctx, repo)
}

func TestInit_SystemDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := Init(ctx, dir, WithAdapter(AdapterFS), WithSystemDir(".cache"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, core.Note{Title: "t"})
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".cache", "index.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, fs.DefaultSystemDir))
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, ".cache", repo.(*fs.Repository).State().(fs.RepositoryState).SystemDir)
}

func TestNew(t *testing.T) {
	svc, err := New(context.Background(), t.TempDir(), WithAdapter(AdapterFS))
	require.NoError(t, err)
	assert.IsType(t, &fs.Repository{}, svc.Repository())

	note, err := svc.CreateNote(context.Background(), core.NoteInput{Title: "persisted"})
	require.NoError(t, err)

	got, err := svc.GetNote(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Title)
	assert.Equal(t, "fs", svc.State().(core.ServiceState).RepositoryType)
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	svc := core.NewService(memory.NewRepository())

	b, exec, err := NewBackend(ctx, workload.FlavorEventLoop, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, workload.FlavorEventLoop, b.Name())

	reply, err := b.CPU(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, 610, reply.Result)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = exec.Stop(stopCtx)

	b, exec, err = NewBackend(ctx, "", svc, nil)
	require.NoError(t, err)
	assert.Equal(t, workload.FlavorGoroutines, b.Name())
	assert.NoError(t, exec.Stop(ctx))

	_, _, err = NewBackend(ctx, "threads", svc, nil)
	assert.ErrorContains(t, err, "unknown flavor")
}

func TestNewBackend_OutlivesCancelledParent(t *testing.T) {
	svc := core.NewService(memory.NewRepository())
	parent, cancelParent := context.WithCancel(context.Background())

	b, exec, err := NewBackend(context.WithoutCancel(parent), workload.FlavorEventLoop, svc, nil)
	require.NoError(t, err)
	cancelParent()

	// Requests still in flight while the server drains get answered.
	reply, err := b.CPU(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 55, reply.Result)

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = exec.Stop(stopCtx)
	assert.Eventually(t, func() bool {
		_, err := b.CPU(context.Background(), 1)
		return errors.Is(err, workload.ErrLoopStopped)
	}, 2*time.Second, 10*time.Millisecond, "Stop still halts the loop")

	_, _, err = NewBackend(parent, workload.FlavorEventLoop, svc, nil)
	assert.Error(t, err, "an already cancelled parent cannot start the loop")
}

func TestResolveDataPath(t *testing.T) {
	inTemp := filepath.Join(os.TempDir(), "already-safe")
	devRoot := filepath.Join(os.TempDir(), "notebench-dev")

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{"no safety, empty", "", false, "."},
		{"no safety, kept", "./data", false, "./data"},
		{"safety, relative", "./data", true, filepath.Join(devRoot, "data")},
		{"safety, empty", "", true, filepath.Join(devRoot, "default")},
		{"safety, dot", ".", true, filepath.Join(devRoot, "default")},
		{"safety, inside temp", inTemp, true, inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDataPath(tt.path, tt.forceTemp))
		})
	}
}

func TestIsDevRun(t *testing.T) {
	assert.True(t, IsDevRun(), "test binaries are dev runs")
}
