package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/thesis-ai/internal/thesis"
)

func entry(i int) thesis.HistoryEntry {
	return thesis.HistoryEntry{
		Result: thesis.AnalysisResult{
			FormattedText:   fmt.Sprintf("Teks %d", i),
			Suggestions:     []thesis.Suggestion{},
			Score:           float64(i),
			MissingSections: []string{},
		},
		Mode:      thesis.ModeGeneral,
		Original:  fmt.Sprintf("teks %d", i),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func TestRecordCapsAndOrders(t *testing.T) {
	ctx := context.Background()
	log := New(NewMemoryStore())

	for i := 1; i <= 25; i++ {
		require.NoError(t, log.Record(ctx, entry(i)))
		assert.LessOrEqual(t, len(log.Entries(ctx)), Limit)
	}

	entries := log.Entries(ctx)
	require.Len(t, entries, Limit)
	for i, e := range entries {
		assert.Equal(t, float64(25-i), e.Result.Score, "entry %d", i)
	}

	first, ok := log.Get(ctx, 0)
	require.True(t, ok)
	assert.Equal(t, "Teks 25", first.Result.FormattedText)
	_, ok = log.Get(ctx, Limit)
	assert.False(t, ok)
}

func TestLoadRestoresPersistedLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	log := New(store)
	require.NoError(t, log.Record(ctx, entry(1)))
	require.NoError(t, log.Record(ctx, entry(2)))

	restored := New(store)
	entries := restored.Load(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, entry(2), entries[0])
	assert.Equal(t, entry(1), entries[1])
}

func TestLoadToleratesCorruptData(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{not json", `{"result": 1}`, `[{"result": "x"}]`} {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, Key, raw))

		log := New(store)
		assert.Empty(t, log.Load(ctx), raw)
		assert.Empty(t, log.Entries(ctx))

		require.NoError(t, log.Record(ctx, entry(1)))
		assert.Len(t, log.Entries(ctx), 1)
	}
}

func TestLoadTruncatesOversizedLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	oversized := make([]thesis.HistoryEntry, 0, 15)
	for i := 0; i < 15; i++ {
		oversized = append(oversized, entry(i))
	}
	raw, err := encode(oversized)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, Key, raw))

	loaded := New(store).Load(ctx)
	require.Len(t, loaded, Limit)
	assert.Equal(t, entry(0), loaded[0])
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk gone")
}

func (failingStore) Update(context.Context, string, UpdateFunc) error {
	return errors.New("disk gone")
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	log := New(failingStore{})

	assert.Empty(t, log.Load(ctx))
	assert.Error(t, log.Record(ctx, entry(1)))
	assert.Empty(t, log.Entries(ctx), "failed writes leave the log unchanged")
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	log := New(store)
	require.NoError(t, log.Record(ctx, entry(1)))

	require.NoError(t, log.Clear(ctx))
	assert.Empty(t, log.Entries(ctx))
	assert.Empty(t, New(store).Load(ctx))
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, Key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, Key, "one"))
	require.NoError(t, store.Set(ctx, Key, "two"))
	v, ok, err := store.Get(ctx, Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	log := New(reopened)
	assert.Empty(t, log.Load(ctx), "\"two\" is not a valid log")
	require.NoError(t, log.Record(ctx, entry(7)))
	assert.Equal(t, []thesis.HistoryEntry{entry(7)}, New(reopened).Load(ctx))
}

func TestLogsSharingOneDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	serverStore, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer serverStore.Close()
	server := New(serverStore)
	server.Load(ctx)

	cliStore, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	cli := New(cliStore)
	cli.Load(ctx)
	require.NoError(t, cli.Record(ctx, entry(1)))
	require.NoError(t, cliStore.Close())

	assert.Equal(t, []thesis.HistoryEntry{entry(1)}, server.Entries(ctx), "reads see other writers")

	require.NoError(t, server.Record(ctx, entry(2)))

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []thesis.HistoryEntry{entry(2), entry(1)}, New(reopened).Load(ctx))

	got, ok := server.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, entry(1), got)
}

func TestRecordMergesWithStoredLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	stale := New(store)
	stale.Load(ctx)
	other := New(store)
	for i := 1; i <= Limit; i++ {
		require.NoError(t, other.Record(ctx, entry(i)))
	}

	require.NoError(t, stale.Record(ctx, entry(99)))
	entries := New(store).Load(ctx)
	require.Len(t, entries, Limit)
	assert.Equal(t, entry(99), entries[0])
	assert.Equal(t, entry(Limit), entries[1])
	assert.Equal(t, entry(2), entries[Limit-1])
}

func TestRecordReplacesCorruptStoredLog(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	log := New(store)
	log.Load(ctx)

	require.NoError(t, store.Set(ctx, Key, "{not json"))
	require.NoError(t, log.Record(ctx, entry(1)))
	assert.Equal(t, []thesis.HistoryEntry{entry(1)}, New(store).Load(ctx))
}

func TestEntriesFallBackToCachedCopy(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: NewMemoryStore()}
	log := New(store)
	require.NoError(t, log.Record(ctx, entry(1)))

	store.failReads = true
	assert.Equal(t, []thesis.HistoryEntry{entry(1)}, log.Entries(ctx))
}

type flakyStore struct {
	*MemoryStore
	failReads bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failReads {
		return "", false, errors.New("database is locked")
	}
	return s.MemoryStore.Get(ctx, key)
}
