package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebench/pkg/adapters/memory"
	"github.com/aretw0/notebench/pkg/core"
)

func TestRepository_InsertGetList(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))

	first, err := repo.Insert(ctx, core.Note{Title: "one"})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, core.Note{Title: "two"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Title)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first.ID, notes[0].ID, "insertion order is preserved")
}

func TestRepository_GetErrors(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrInvalidID)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_ConcurrentInsert(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Go(func() {
			_, err := repo.Insert(ctx, core.Note{Title: "concurrent"})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	assert.Equal(t, 100, repo.Len())
}
