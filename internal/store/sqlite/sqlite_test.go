package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redock-cli/redock/internal/parse"
	"github.com/redock-cli/redock/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "commands.db"), []string{"run", "exec"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(category string) store.Record {
	return store.Record{
		Category: category,
		Values: parse.Values{
			"detach": {Bool: true},
			"env":    {Str: "TEST=test"},
			"image":  {Str: "test:1.0.0"},
		},
	}
}

func TestInsertAllocatesSequentialIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)
	id2, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)

	// Categories allocate independently.
	id, err := s.Insert(ctx, sampleRecord("exec"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestInsertUnknownCategory(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Insert(context.Background(), sampleRecord("build"))
	require.Error(t, err)
}

func TestGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("run")
	rec.Fallback = true
	rec.FallbackTokens = []string{"-xyz", "test:1.0.0"}

	id, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	got, err := s.Get(ctx, "run", id)
	require.NoError(t, err)

	assert.Equal(t, "run", got.Category)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, rec.Values, got.Values)
	assert.True(t, got.Fallback)
	assert.Equal(t, rec.FallbackTokens, got.FallbackTokens)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "run", 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListAscending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, sampleRecord("run"))
		require.NoError(t, err)
	}

	records, err := s.List(ctx, "run")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.ID)
	}

	// Other categories stay empty.
	records, err = s.List(ctx, "exec")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteDoesNotRecycleIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)
	id2, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "run", id2))

	// The freed id must not be handed out again.
	id3, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
	assert.Greater(t, id3, id1)
}

func TestDeleteNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Delete(ctx, "run", 7)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The failed delete leaves the table unchanged.
	id, insertErr := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, insertErr)
	assert.Equal(t, int64(1), id)
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.db")
	ctx := context.Background()

	s, err := Open(path, []string{"run"})
	require.NoError(t, err)
	id, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, []string{"run"})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "run", id)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord("run").Values, got.Values)

	next, err := s.Insert(ctx, sampleRecord("run"))
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
}
