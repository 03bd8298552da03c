package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

type categoryRow struct {
	name     string
	trackers int
}

// CategoryStore is the live list of categories, oldest first
type CategoryStore struct {
	ds   *storage.DataStore
	opts options
	log  *log.Logger

	mu         sync.RWMutex
	categories []models.Category

	refreshMu sync.Mutex
	observers observers
}

// NewCategoryStore loads the current categories from ds
func NewCategoryStore(ctx context.Context, ds *storage.DataStore, opts ...Option) (*CategoryStore, error) {
	s := &CategoryStore{
		ds:   ds,
		opts: newOptions(opts),
		log:  logger.With("store", "category"),
	}
	if _, err := s.refresh(ctx); err != nil {
		return nil, err
	}
	follow(ds, s, s.Refresh)
	return s, nil
}

// Subscribe registers obs for change notifications. Call the returned
// function to unsubscribe.
func (s *CategoryStore) Subscribe(obs Observer) func() {
	return s.observers.subscribe(obs)
}

func (s *CategoryStore) IsEmpty() bool {
	return s.NumberOfRows() == 0
}

func (s *CategoryStore) NumberOfRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories)
}

// Object returns the category at index with its trackers in insertion order
func (s *CategoryStore) Object(index int) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.categories) {
		return models.Category{}, false
	}
	c := s.categories[index]
	c.Trackers = append([]models.Tracker(nil), c.Trackers...)
	return c, true
}

// Categories returns a copy of every category in display order
func (s *CategoryStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.categories))
	for i, c := range s.categories {
		c.Trackers = append([]models.Tracker(nil), c.Trackers...)
		out[i] = c
	}
	return out
}

// FindByName returns the first category whose name matches, ignoring case
func (s *CategoryStore) FindByName(name string) (models.Category, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, c := range s.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, i, true
		}
	}
	return models.Category{}, -1, false
}

// Add creates an empty category stamped with the current time
func (s *CategoryStore) Add(ctx context.Context, name string) (models.Category, error) {
	c := models.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: s.opts.now(),
	}
	if err := c.Validate(); err != nil {
		return models.Category{}, err
	}

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)",
			c.ID, c.Name, formatTimestamp(c.CreatedAt))
		return err
	})
	if err != nil {
		s.log.Error("Failed to add category", "name", c.Name, "err", err)
		return models.Category{}, apperrors.Persist("category", err)
	}
	s.log.Debug("Added category", "id", c.ID, "name", c.Name)

	if err := publish(ctx, s.ds, s, s.Refresh); err != nil {
		return c, err
	}
	return c, nil
}

// Delete removes the category at index together with its trackers and
// their completion records
func (s *CategoryStore) Delete(ctx context.Context, index int) error {
	c, ok := s.Object(index)
	if !ok {
		return fmt.Errorf("%w: category %d", apperrors.ErrOutOfRange, index)
	}

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, c.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM records WHERE tracker_id IN (SELECT id FROM trackers WHERE category_id = ?)", c.ID); err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		// trackers go with the category through ON DELETE CASCADE
		_, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", c.ID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to delete category", "id", c.ID, "err", err)
		return apperrors.Persist("category deletion", err)
	}
	s.log.Debug("Deleted category", "id", c.ID, "trackers", len(c.Trackers))

	return publish(ctx, s.ds, s, s.Refresh)
}

// Refresh re-reads the categories and notifies observers of any difference
func (s *CategoryStore) Refresh(ctx context.Context) error {
	update, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	s.observers.notify(update)
	return nil
}

func (s *CategoryStore) refresh(ctx context.Context) (StoreUpdate, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	categories, err := storage.Perform(ctx, s.ds, func(tx *sql.Tx) ([]models.Category, error) {
		categories, err := queryCategories(ctx, tx)
		if err != nil {
			return nil, err
		}
		trackers, err := queryTrackers(ctx, tx, "")
		if err != nil {
			return nil, err
		}

		owned := make(map[uuid.UUID][]models.Tracker)
		for _, t := range trackers {
			owned[t.CategoryID] = append(owned[t.CategoryID], t)
		}
		for i := range categories {
			categories[i].Trackers = owned[categories[i].ID]
		}
		return categories, nil
	})
	if err != nil {
		return StoreUpdate{}, fmt.Errorf("failed to load categories: %w", err)
	}

	s.mu.Lock()
	before := categorySnapshot(s.categories)
	s.categories = categories
	after := categorySnapshot(categories)
	s.mu.Unlock()

	return diff(before, after), nil
}

func categorySnapshot(categories []models.Category) []section[uuid.UUID, categoryRow] {
	rows := make([]row[uuid.UUID, categoryRow], len(categories))
	for i, c := range categories {
		rows[i] = row[uuid.UUID, categoryRow]{key: c.ID, value: categoryRow{name: c.Name, trackers: len(c.Trackers)}}
	}
	return []section[uuid.UUID, categoryRow]{{rows: rows}}
}
