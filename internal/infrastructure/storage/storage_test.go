package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrainCandy/internal/config"
	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
)

func newJSONRepo(t *testing.T) (*Repository, string) {
	t.Helper()

	dir := t.TempDir()
	kv, err := NewJSONFileStore(dir)
	require.NoError(t, err)
	return NewRepository(kv), dir
}

func newSQLiteRepo(t *testing.T) *Repository {
	t.Helper()

	kv, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return NewRepository(kv)
}

func exerciseRepository(t *testing.T, repo ports.StateRepository) {
	t.Helper()
	ctx := context.Background()

	seen, err := repo.LoadSeen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, seen.Len())

	seen.Add("https://example.com/a")
	require.NoError(t, repo.SaveSeen(ctx, seen))
	seen, err = repo.LoadSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen.Contains("https://example.com/a"))

	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pending := domain.NewPendingQueue(domain.PendingReview{ID: "1", Title: "A", URL: "https://example.com/a", Source: "S", SentAt: sentAt})
	require.NoError(t, repo.SavePending(ctx, pending))
	loadedPending, err := repo.LoadPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, loadedPending.Len())
	assert.True(t, sentAt.Equal(loadedPending.Entries()[0].SentAt))

	log := []domain.FeedbackRecord{{Title: "A", URL: "https://example.com/a", Source: "S", Rating: domain.RatingGood}}
	require.NoError(t, repo.SaveFeedback(ctx, log))
	loadedLog, err := repo.LoadFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, loadedLog, 1)
	assert.Equal(t, domain.RatingGood, loadedLog[0].Rating)

	queue := []domain.QueueEntry{{Candidate: domain.Candidate{Title: "Q", Link: "https://example.com/q", Source: "S", Points: 320}, Score: 0.7}}
	require.NoError(t, repo.SaveQueue(ctx, queue))
	loadedQueue, err := repo.LoadQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, queue, loadedQueue)

	daily := domain.DailySources{}.Add("2025-03-01", "S")
	require.NoError(t, repo.SaveDailySources(ctx, daily))
	loadedDaily, err := repo.LoadDailySources(ctx)
	require.NoError(t, err)
	assert.Equal(t, daily, loadedDaily)

	ledger := domain.DiscoveryLedger{SeenDomains: []string{"gwern.net"}}
	require.NoError(t, repo.SaveDiscovery(ctx, ledger))
	loadedLedger, err := repo.LoadDiscovery(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gwern.net"}, loadedLedger.SeenDomains)
}

func TestJSONRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, dir := newJSONRepo(t)
	exerciseRepository(t, repo)

	_, err := os.Stat(filepath.Join(dir, KeyQueue+".json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, KeyQueue+".json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	exerciseRepository(t, newSQLiteRepo(t))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.db")
	first, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), KeyQueue, []string{"x"}))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	var got []string
	found, err := second.Load(context.Background(), KeyQueue, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"x"}, got)
}

func TestLoadSeenNormalizesLegacyEntries(t *testing.T) {
	t.Parallel()

	repo, dir := newJSONRepo(t)
	legacy := `["http://Example.com/post/?utm_source=rss", "https://example.com/other"]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeySeen+".json"), []byte(legacy), 0o644))

	seen, err := repo.LoadSeen(context.Background())
	require.NoError(t, err)
	assert.True(t, seen.Contains("https://example.com/post"))
	assert.Equal(t, 2, seen.Len())
}

func TestJSONStoreRejectsPathKeys(t *testing.T) {
	t.Parallel()

	kv, err := NewJSONFileStore(t.TempDir())
	require.NoError(t, err)

	err = kv.Save(context.Background(), "../escape", 1)
	require.Error(t, err)
}

func TestJSONStoreReportsCorruptFile(t *testing.T) {
	t.Parallel()

	repo, dir := newJSONRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyQueue+".json"), []byte("{not json"), 0o644))

	_, err := repo.LoadQueue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load queue")
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.StorageConfig{Driver: "postgres"})
	require.ErrorIs(t, err, ErrUnknownDriver)
}

func TestRedisKeyPrefix(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(nil, "braincandy:")
	assert.Equal(t, "braincandy:queue", store.key(KeyQueue))
}
