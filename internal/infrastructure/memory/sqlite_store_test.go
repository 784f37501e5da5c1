package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/termind/internal/domain"
	"github.com/doeshing/termind/internal/infrastructure/embedding"
	"github.com/doeshing/termind/internal/ports"
)

type steppingClock struct {
	next time.Time
	step time.Duration
}

func (c *steppingClock) now() time.Time {
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

func newClock(step time.Duration) *steppingClock {
	return &steppingClock{next: time.Unix(1, 0), step: step}
}

func openStore(t *testing.T, embedder ports.Embedder, opts ...Option) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	store, err := Open(context.Background(), path, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func queries(records []domain.MemoryRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Query)
	}
	return out
}

type fixedEmbedder struct {
	name string
	vec  []float32
	err  error
}

func (f fixedEmbedder) Name() string { return f.name }

func (f fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

func TestStore_AddThenQueryReturnsRecordFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0))

	rec, stored, err := store.Add(ctx, "list all go files", "find . -name '*.go'")
	require.NoError(t, err)
	require.True(t, stored)
	assert.NotEmpty(t, rec.ID)

	matches, err := store.Query(ctx, "list all go files", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, rec.ID, matches[0].Record.ID)
	assert.Equal(t, "find . -name '*.go'", matches[0].Record.Response)
	assert.InDelta(t, 0, matches[0].Distance, 1e-6)
}

func TestStore_QueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0))
	for q, r := range map[string]string{
		"show docker containers":         "docker ps -a",
		"count lines in python files":    "wc -l *.py",
		"show running docker containers": "docker ps",
	} {
		_, _, err := store.Add(ctx, q, r)
		require.NoError(t, err)
	}

	matches, err := store.Query(ctx, "show running docker containers", 3)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, "docker ps", matches[0].Record.Response)
	assert.Equal(t, "wc -l *.py", matches[2].Record.Response)
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
}

func TestStore_QueryEmptyStore(t *testing.T) {
	store := openStore(t, fixedEmbedder{name: "broken", err: errors.New("offline")})

	matches, err := store.Query(context.Background(), "anything", 5)

	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestStore_QueryTiesPreferNewest(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Second)
	store := openStore(t, fixedEmbedder{name: "flat", vec: []float32{1, 0}}, WithClock(clock.now))

	for _, q := range []string{"a", "b", "c"} {
		_, _, err := store.Add(ctx, q, "cmd-"+q)
		require.NoError(t, err)
	}

	matches, err := store.Query(ctx, "x", 2)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "c", matches[0].Record.Query)
	assert.Equal(t, "b", matches[1].Record.Query)
}

func TestStore_QueryTiesOnSameInstantPreferLaterInsert(t *testing.T) {
	ctx := context.Background()
	clock := newClock(0)
	store := openStore(t, fixedEmbedder{name: "flat", vec: []float32{1, 0}}, WithClock(clock.now))

	for _, q := range []string{"first", "second"} {
		_, _, err := store.Add(ctx, q, "cmd")
		require.NoError(t, err)
	}

	matches, err := store.Query(ctx, "x", 5)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "second", matches[0].Record.Query)
}

func TestStore_EmptyResponseIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0))
	_, _, err := store.Add(ctx, "seed", "ls")
	require.NoError(t, err)

	_, stored, err := store.Add(ctx, "list files", "")
	require.NoError(t, err)
	assert.False(t, stored)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_EmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, fixedEmbedder{name: "broken", err: errors.New("model unavailable")})

	_, stored, err := store.Add(ctx, "list files", "ls")

	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.False(t, stored)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_EmptyVectorIsEmbeddingFailure(t *testing.T) {
	store := openStore(t, fixedEmbedder{name: "empty"})

	_, _, err := store.Add(context.Background(), "q", "r")

	require.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestStore_EvictRemovesOldestFirst(t *testing.T) {
	ctx := context.Background()
	clock := newClock(time.Second)
	store := openStore(t, embedding.NewHashingEmbedder(0), WithClock(clock.now))
	for _, q := range []string{"one", "two", "three"} {
		_, _, err := store.Add(ctx, q, "echo "+q)
		require.NoError(t, err)
	}

	removed, err := store.Evict(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, queries(records))
	assert.Equal(t, int64(2), records[0].CreatedAt.Unix())
	assert.Equal(t, int64(3), records[1].CreatedAt.Unix())
}

func TestStore_EvictUsesInsertionOrderOnTies(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0), WithClock(newClock(0).now))
	for _, q := range []string{"one", "two", "three"} {
		_, _, err := store.Add(ctx, q, "echo "+q)
		require.NoError(t, err)
	}

	_, err := store.Evict(ctx, 1)
	require.NoError(t, err)

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"three"}, queries(records))
}

func TestStore_CountNeverExceedsBound(t *testing.T) {
	ctx := context.Background()
	const bound = 5
	store := openStore(t, embedding.NewHashingEmbedder(32), WithClock(newClock(time.Millisecond).now))

	for i := 0; i < 3*bound; i++ {
		_, _, err := store.Add(ctx, "request", "command")
		require.NoError(t, err)
		_, err = store.Evict(ctx, bound)
		require.NoError(t, err)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, count, bound)
	}
}

func TestStore_EvictWithinBoundIsNoop(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0))
	_, _, err := store.Add(ctx, "q", "r")
	require.NoError(t, err)

	removed, err := store.Evict(ctx, 10)

	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, embedding.NewHashingEmbedder(0))
	for _, q := range []string{"a", "b"} {
		_, _, err := store.Add(ctx, q, "cmd")
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear(ctx))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	matches, err := store.Query(ctx, "a", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "memory.db")
	embedder := embedding.NewHashingEmbedder(0)

	store, err := Open(ctx, path, embedder)
	require.NoError(t, err)
	_, _, err = store.Add(ctx, "disk usage", "du -sh .")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path, embedder)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "disk usage", records[0].Query)
	assert.Equal(t, "du -sh .", records[0].Response)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestStore_ExcludesIncomparableVectors(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.db")

	old, err := Open(ctx, path, fixedEmbedder{name: "engine", vec: []float32{1, 0, 0}})
	require.NoError(t, err)
	_, _, err = old.Add(ctx, "old", "cmd")
	require.NoError(t, err)
	require.NoError(t, old.Close())

	resized, err := Open(ctx, path, fixedEmbedder{name: "engine", vec: []float32{1, 0}})
	require.NoError(t, err)
	_, _, err = resized.Add(ctx, "new", "cmd")
	require.NoError(t, err)

	matches, err := resized.Query(ctx, "x", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Record.Query)
	require.NoError(t, resized.Close())

	renamed, err := Open(ctx, path, fixedEmbedder{name: "other", vec: []float32{1, 0}})
	require.NoError(t, err)
	defer renamed.Close()
	matches, err = renamed.Query(ctx, "x", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
	count, err := renamed.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	require.NoError(t, os.WriteFile(path, []byte("this is definitely not a sqlite database"), 0o600))

	_, err := Open(context.Background(), path, embedding.NewHashingEmbedder(0))

	require.ErrorIs(t, err, domain.ErrStoreCorrupt)
}

func TestOpen_EmptyFileIsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := Open(context.Background(), path, embedding.NewHashingEmbedder(0))
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_RequiresEmbedder(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "m.db"), nil)
	assert.Error(t, err)
}

func TestVectorEncoding(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.4028235e38}

	decoded, ok := decodeVector(encodeVector(vec))

	require.True(t, ok)
	assert.Equal(t, vec, decoded)
	_, ok = decodeVector([]byte{1, 2, 3})
	assert.False(t, ok)
}
