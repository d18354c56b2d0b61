package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aretw0/notebench/pkg/core"
)

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", oid.Hex() + "00"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, core.ErrInvalidID, "id %q", bad)
	}
}

func TestDocumentMapping(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := toDocument(core.Note{Title: "t", Content: "c", CreatedAt: now, UpdatedAt: now})
	doc.ID = primitive.NewObjectID()

	note := doc.toNote()
	assert.Equal(t, doc.ID.Hex(), note.ID)
	assert.Equal(t, "t", note.Title)
	assert.Equal(t, "c", note.Content)
	assert.True(t, note.CreatedAt.Equal(now))
}

func TestRepository_NotInitialized(t *testing.T) {
	repo := NewRepository(Config{URI: "mongodb://localhost:1"})
	ctx := context.Background()

	_, err := repo.Insert(ctx, core.Note{})
	assert.Error(t, err)

	_, err = repo.Get(ctx, "bad")
	assert.ErrorIs(t, err, core.ErrInvalidID, "malformed ids are rejected before touching the server")
}

func TestRepository_EmptyURI(t *testing.T) {
	repo := NewRepository(Config{})
	err := repo.Initialize(context.Background())
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

// TestRepository_Integration runs against a live server when MONGO_URI is set.
func TestRepository_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	repo := NewRepository(Config{URI: uri, Database: "notebench_test"})
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	t.Cleanup(func() {
		_ = repo.collection.Drop(context.Background())
		_ = repo.Close(context.Background())
	})

	now := time.Now().UTC().Truncate(time.Millisecond)
	created, err := repo.Insert(ctx, core.Note{Title: "integration", Content: "body", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, got.CreatedAt.Equal(now))

	_, err = repo.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, core.ErrNotFound)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}
