package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/query"
)

func TestCrossStore_CategoryDeleteRefreshesTrackersAndRecords(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	health := mustAddCategory(t, s.categories, "Health")
	work := mustAddCategory(t, s.categories, "Work")

	walk, err := s.trackers.AddTracker(ctx, newTracker("Walk", models.Monday), health)
	require.NoError(t, err)
	inbox, err := s.trackers.AddTracker(ctx, newTracker("Inbox zero", models.Monday), work)
	require.NoError(t, err)
	require.NoError(t, s.records.Add(ctx, models.NewCompletionRecord(walk.ID, testNow), walk.ID))
	require.NoError(t, s.records.Add(ctx, models.NewCompletionRecord(inbox.ID, testNow), inbox.ID))
	require.Equal(t, 2, s.trackers.NumberOfSections())

	var trackerUpdates, recordUpdates recorder
	s.trackers.Subscribe(&trackerUpdates)
	s.records.Subscribe(&recordUpdates)

	require.NoError(t, s.categories.Delete(ctx, 0))

	require.Equal(t, 1, s.trackers.NumberOfSections())
	header, _ := s.trackers.Header(0)
	assert.Equal(t, "Work", header)
	assert.Empty(t, s.trackers.IndexPathsForTracker(walk.ID))
	got, ok := s.trackers.Object(models.IndexPath{Section: 0, Row: 0})
	require.True(t, ok)
	assert.Equal(t, inbox.ID, got.ID)
	assert.Equal(t, StoreUpdate{Reload: true}, trackerUpdates.last(t))

	assert.False(t, s.records.IsEmpty())
	assert.Len(t, recordUpdates.last(t).Deleted, 1)
}

func TestCrossStore_TrackerWritesRefreshCategories(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	health := mustAddCategory(t, s.categories, "Health")

	var rec recorder
	s.categories.Subscribe(&rec)

	walk, err := s.trackers.AddTracker(ctx, newTracker("Walk", models.Monday), health)
	require.NoError(t, err)
	assert.Equal(t, StoreUpdate{Updated: []models.IndexPath{{Section: 0, Row: 0}}}, rec.last(t))

	c, _ := s.categories.Object(0)
	require.Len(t, c.Trackers, 1)
	assert.Equal(t, "Walk", c.Trackers[0].Name)

	walk.Name = "Long walk"
	require.NoError(t, s.trackers.UpdateTracker(ctx, walk, nil))
	c, _ = s.categories.Object(0)
	assert.Equal(t, "Long walk", c.Trackers[0].Name)

	_, err = s.trackers.PinTrackerToggle(ctx, models.IndexPath{Section: 0, Row: 0})
	require.NoError(t, err)
	c, _ = s.categories.Object(0)
	assert.True(t, c.Trackers[0].IsPinned)

	require.NoError(t, s.trackers.DeleteTracker(ctx, models.IndexPath{Section: 0, Row: 0}))
	c, _ = s.categories.Object(0)
	assert.Empty(t, c.Trackers)
}

func TestCrossStore_RecordWritesRefreshCompletionFilter(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	health := mustAddCategory(t, s.categories, "Health")
	walk, err := s.trackers.AddTracker(ctx, newTracker("Walk", models.Monday), health)
	require.NoError(t, err)

	require.NoError(t, s.trackers.FilterWith(ctx, query.Filter{Date: testNow, Mode: constants.FilterCompleted}))
	require.True(t, s.trackers.IsEmpty())

	var rec recorder
	s.trackers.Subscribe(&rec)

	require.NoError(t, s.records.Add(ctx, models.NewCompletionRecord(walk.ID, testNow), walk.ID))
	assert.Equal(t, []models.IndexPath{{Section: 0, Row: 0}}, s.trackers.IndexPathsForTracker(walk.ID))
	assert.Equal(t, StoreUpdate{Reload: true}, rec.last(t))

	completed, err := s.records.Toggle(ctx, walk.ID, testNow)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.True(t, s.trackers.IsEmpty())
}

func TestCrossStore_WriterNotifiesOnce(t *testing.T) {
	s := setupTestStores(t)

	var rec recorder
	s.categories.Subscribe(&rec)

	mustAddCategory(t, s.categories, "Health")
	assert.Len(t, rec.updates, 1)
}
