package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
)

func TestCategoryStore_AddKeepsCreationOrder(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	assert.True(t, s.categories.IsEmpty())

	for _, name := range []string{"Work", "Health", "Art"} {
		_, err := s.categories.Add(ctx, name)
		require.NoError(t, err)
	}

	require.Equal(t, 3, s.categories.NumberOfRows())
	var names []string
	for i := 0; i < s.categories.NumberOfRows(); i++ {
		c, ok := s.categories.Object(i)
		require.True(t, ok)
		names = append(names, c.Name)
		assert.True(t, testNow.Equal(c.CreatedAt))
	}
	assert.Equal(t, []string{"Work", "Health", "Art"}, names)

	_, ok := s.categories.Object(3)
	assert.False(t, ok)
	_, ok = s.categories.Object(-1)
	assert.False(t, ok)
}

func TestCategoryStore_AddRejectsEmptyName(t *testing.T) {
	s := setupTestStores(t)

	_, err := s.categories.Add(context.Background(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyName)
	assert.True(t, s.categories.IsEmpty())
}

func TestCategoryStore_ObjectIncludesTrackers(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	health := mustAddCategory(t, s.categories, "Health")

	for _, name := range []string{"Walk", "Drink water", "Stretch"} {
		_, err := s.trackers.AddTracker(ctx, models.Tracker{Name: name, Schedule: models.IrregularSchedule()}, health)
		require.NoError(t, err)
	}

	c, ok := s.categories.Object(0)
	require.True(t, ok)
	require.Len(t, c.Trackers, 3)
	assert.Equal(t, "Walk", c.Trackers[0].Name)
	assert.Equal(t, "Drink water", c.Trackers[1].Name)
	assert.Equal(t, "Stretch", c.Trackers[2].Name)
}

func TestCategoryStore_Notifications(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()

	var rec recorder
	s.categories.Subscribe(&rec)

	mustAddCategory(t, s.categories, "Health")
	assert.Equal(t, StoreUpdate{Inserted: []models.IndexPath{{Section: 0, Row: 0}}}, rec.last(t))

	mustAddCategory(t, s.categories, "Work")
	assert.Equal(t, StoreUpdate{Inserted: []models.IndexPath{{Section: 0, Row: 1}}}, rec.last(t))

	rec.reset()
	require.NoError(t, s.categories.Refresh(ctx))
	assert.Empty(t, rec.updates, "refresh without changes must stay silent")

	require.NoError(t, s.categories.Delete(ctx, 0))
	assert.Equal(t, StoreUpdate{Deleted: []models.IndexPath{{Section: 0, Row: 0}}}, rec.last(t))
}

func TestCategoryStore_DeleteCascades(t *testing.T) {
	s := setupTestStores(t)
	ctx := context.Background()
	health := mustAddCategory(t, s.categories, "Health")
	work := mustAddCategory(t, s.categories, "Work")

	walk, err := s.trackers.AddTracker(ctx, models.Tracker{Name: "Walk", Schedule: models.IrregularSchedule()}, health)
	require.NoError(t, err)
	email, err := s.trackers.AddTracker(ctx, models.Tracker{Name: "Inbox zero", Schedule: models.IrregularSchedule()}, work)
	require.NoError(t, err)
	require.NoError(t, s.records.Add(ctx, models.NewCompletionRecord(walk.ID, testNow), walk.ID))
	require.NoError(t, s.records.Add(ctx, models.NewCompletionRecord(email.ID, testNow), email.ID))

	require.NoError(t, s.categories.Delete(ctx, 0))

	require.Equal(t, 1, s.categories.NumberOfRows())
	c, _ := s.categories.Object(0)
	assert.Equal(t, "Work", c.Name)

	_, err = s.trackers.Get(ctx, walk.ID)
	assert.ErrorIs(t, err, apperrors.ErrTrackerNotFound)

	n, err := s.records.FetchNumberOfAllRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "records of deleted trackers must be removed")
}

func TestCategoryStore_DeleteOutOfRange(t *testing.T) {
	s := setupTestStores(t)

	err := s.categories.Delete(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCategoryStore_FindByName(t *testing.T) {
	s := setupTestStores(t)
	id := mustAddCategory(t, s.categories, "Health")

	c, index, ok := s.categories.FindByName("health")
	require.True(t, ok)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, 0, index)

	_, _, ok = s.categories.FindByName("Work")
	assert.False(t, ok)
}
