package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tracker/internal/storage"
)

// 2024-01-01 was a Monday
var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testStores struct {
	ds         *storage.DataStore
	categories *CategoryStore
	trackers   *TrackerStore
	records    *RecordStore
}

func setupTestStores(t *testing.T) testStores {
	t.Helper()
	ctx := context.Background()

	ds, err := storage.Open(ctx, filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })

	clock := WithClock(func() time.Time { return testNow })

	categories, err := NewCategoryStore(ctx, ds, clock)
	require.NoError(t, err)
	trackers, err := NewTrackerStore(ctx, ds, clock)
	require.NoError(t, err)
	records, err := NewRecordStore(ctx, ds, clock)
	require.NoError(t, err)

	return testStores{ds: ds, categories: categories, trackers: trackers, records: records}
}

// recorder collects every update delivered to it
type recorder struct {
	updates []StoreUpdate
}

func (r *recorder) DidUpdate(u StoreUpdate) {
	r.updates = append(r.updates, u)
}

func (r *recorder) last(t *testing.T) StoreUpdate {
	t.Helper()
	require.NotEmpty(t, r.updates, "no update delivered")
	return r.updates[len(r.updates)-1]
}

func (r *recorder) reset() {
	r.updates = nil
}

func mustAddCategory(t *testing.T, s *CategoryStore, name string) uuid.UUID {
	t.Helper()
	c, err := s.Add(context.Background(), name)
	require.NoError(t, err)
	return c.ID
}
