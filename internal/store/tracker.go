package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/marshal"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/query"
	"github.com/julianstephens/tracker/internal/storage"
)

// trackerSection is one section of the grouped tracker list. The pinned
// section has no category.
type trackerSection struct {
	title    string
	pinned   bool
	category models.Category
	trackers []models.Tracker
}

// TrackerStore is the filtered, grouped list of trackers. When any visible
// tracker is pinned, section 0 holds the pinned trackers sorted by name.
// The remaining sections are categories sorted by name with trackers in
// insertion order.
type TrackerStore struct {
	ds   *storage.DataStore
	opts options
	log  *log.Logger

	mu         sync.RWMutex
	filter     query.Filter
	sections   []trackerSection
	categories map[uuid.UUID]models.Category

	refreshMu sync.Mutex
	observers observers
}

// NewTrackerStore loads trackers scheduled for today
func NewTrackerStore(ctx context.Context, ds *storage.DataStore, opts ...Option) (*TrackerStore, error) {
	s := &TrackerStore{
		ds:   ds,
		opts: newOptions(opts),
		log:  logger.With("store", "tracker"),
	}
	s.filter = query.Filter{Mode: constants.FilterToday}.Resolve(s.opts.now())
	if _, err := s.refresh(ctx, nil); err != nil {
		return nil, err
	}
	follow(ds, s, s.Refresh)
	return s, nil
}

// Subscribe registers obs for change notifications. Call the returned
// function to unsubscribe.
func (s *TrackerStore) Subscribe(obs Observer) func() {
	return s.observers.subscribe(obs)
}

// CurrentFilter returns the filter the list was last derived with
func (s *TrackerStore) CurrentFilter() query.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *TrackerStore) IsEmpty() bool {
	return s.NumberOfSections() == 0
}

func (s *TrackerStore) NumberOfSections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

// NumberOfRows returns the row count of section, 0 when out of range
func (s *TrackerStore) NumberOfRows(section int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if section < 0 || section >= len(s.sections) {
		return 0
	}
	return len(s.sections[section].trackers)
}

func (s *TrackerStore) Object(path models.IndexPath) (models.Tracker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objectLocked(path)
}

func (s *TrackerStore) objectLocked(path models.IndexPath) (models.Tracker, bool) {
	if path.Section < 0 || path.Section >= len(s.sections) {
		return models.Tracker{}, false
	}
	trackers := s.sections[path.Section].trackers
	if path.Row < 0 || path.Row >= len(trackers) {
		return models.Tracker{}, false
	}
	return trackers[path.Row], true
}

// Header returns the title of section: "Pinned" or the category name
func (s *TrackerStore) Header(section int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if section < 0 || section >= len(s.sections) {
		return "", false
	}
	return s.sections[section].title, true
}

// Category returns the owning category of the tracker at path. Pinned
// trackers still report their own category.
func (s *TrackerStore) Category(path models.IndexPath) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.objectLocked(path)
	if !ok {
		return models.Category{}, false
	}
	c, ok := s.categories[t.CategoryID]
	return c, ok
}

// IndexPathsForTracker returns every position the tracker currently occupies.
// A tracker hidden by the filter has none.
func (s *TrackerStore) IndexPathsForTracker(id uuid.UUID) []models.IndexPath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paths []models.IndexPath
	for si, sec := range s.sections {
		for ri, t := range sec.trackers {
			if t.ID == id {
				paths = append(paths, models.IndexPath{Section: si, Row: ri})
			}
		}
	}
	return paths
}

// FindByName returns the first visible tracker whose folded name equals name
func (s *TrackerStore) FindByName(name string) (models.Tracker, models.IndexPath, bool) {
	want := query.Fold(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for si, sec := range s.sections {
		for ri, t := range sec.trackers {
			if query.Fold(t.Name) == want {
				return t, models.IndexPath{Section: si, Row: ri}, true
			}
		}
	}
	return models.Tracker{}, models.IndexPath{}, false
}

// Get loads a tracker by id regardless of the current filter
func (s *TrackerStore) Get(ctx context.Context, id uuid.UUID) (models.Tracker, error) {
	return storage.Perform(ctx, s.ds, func(tx *sql.Tx) (models.Tracker, error) {
		row := tx.QueryRowContext(ctx, "SELECT "+trackerColumns+" FROM trackers WHERE id = ?", id)
		t, err := scanTracker(row)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tracker{}, fmt.Errorf("%w: %s", apperrors.ErrTrackerNotFound, id)
		}
		return t, err
	})
}

// AddTracker inserts t at the end of the category. A zero ID is replaced
// with a fresh one; the stored tracker is returned.
func (s *TrackerStore) AddTracker(ctx context.Context, t models.Tracker, categoryID uuid.UUID) (models.Tracker, error) {
	if err := t.Validate(); err != nil {
		return models.Tracker{}, err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CategoryID = categoryID

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		if err := categoryExists(ctx, tx, categoryID); err != nil {
			return err
		}
		position, err := nextPosition(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trackers (id, name, color_hex, emoji, schedule, is_pinned, category_id, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, marshal.EncodeColor(t.Color), t.Emoji, marshal.EncodeWeekdays(t.Schedule),
			t.IsPinned, categoryID, position, formatTimestamp(s.opts.now()))
		return err
	})
	if err != nil {
		s.log.Error("Failed to add tracker", "name", t.Name, "category", categoryID, "err", err)
		return models.Tracker{}, apperrors.Persist("tracker", err)
	}
	s.log.Debug("Added tracker", "id", t.ID, "name", t.Name, "category", categoryID)

	if err := publish(ctx, s.ds, s, s.Refresh); err != nil {
		return t, err
	}
	return t, nil
}

// UpdateTracker overwrites the mutable fields of the tracker with t.ID.
// A non-nil categoryID moves it to the end of that category.
func (s *TrackerStore) UpdateTracker(ctx context.Context, t models.Tracker, categoryID *uuid.UUID) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var pinChanged bool
	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		var wasPinned bool
		var currentCategory uuid.UUID
		err := tx.QueryRowContext(ctx, "SELECT is_pinned, category_id FROM trackers WHERE id = ?", t.ID).
			Scan(&wasPinned, &currentCategory)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", apperrors.ErrTrackerNotFound, t.ID)
		}
		if err != nil {
			return err
		}
		pinChanged = wasPinned != t.IsPinned

		if _, err := tx.ExecContext(ctx, `
			UPDATE trackers SET name = ?, color_hex = ?, emoji = ?, schedule = ?, is_pinned = ?
			WHERE id = ?`,
			t.Name, marshal.EncodeColor(t.Color), t.Emoji, marshal.EncodeWeekdays(t.Schedule), t.IsPinned, t.ID); err != nil {
			return err
		}

		if categoryID == nil || *categoryID == currentCategory {
			return nil
		}
		if err := categoryExists(ctx, tx, *categoryID); err != nil {
			return err
		}
		position, err := nextPosition(ctx, tx, *categoryID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE trackers SET category_id = ?, position = ? WHERE id = ?",
			*categoryID, position, t.ID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to update tracker", "id", t.ID, "err", err)
		return apperrors.Persist("tracker update", err)
	}
	s.log.Debug("Updated tracker", "id", t.ID, "pin_changed", pinChanged)

	if pinChanged {
		return publish(ctx, s.ds, s, s.refreshAndReload)
	}
	return publish(ctx, s.ds, s, s.Refresh)
}

// DeleteTracker removes the tracker at path and its completion records
func (s *TrackerStore) DeleteTracker(ctx context.Context, path models.IndexPath) error {
	t, ok := s.Object(path)
	if !ok {
		return fmt.Errorf("%w: tracker %s", apperrors.ErrOutOfRange, path)
	}

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		if err := trackerExists(ctx, tx, t.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE tracker_id = ?", t.ID); err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM trackers WHERE id = ?", t.ID)
		return err
	})
	if err != nil {
		s.log.Error("Failed to delete tracker", "id", t.ID, "err", err)
		return apperrors.Persist("tracker deletion", err)
	}
	s.log.Debug("Deleted tracker", "id", t.ID, "name", t.Name)

	return publish(ctx, s.ds, s, s.Refresh)
}

// PinTrackerToggle flips the pinned flag of the tracker at path. Observers
// always receive a reload since the tracker changes section.
func (s *TrackerStore) PinTrackerToggle(ctx context.Context, path models.IndexPath) (models.Tracker, error) {
	t, ok := s.Object(path)
	if !ok {
		return models.Tracker{}, fmt.Errorf("%w: tracker %s", apperrors.ErrOutOfRange, path)
	}
	t.IsPinned = !t.IsPinned

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE trackers SET is_pinned = ? WHERE id = ?", t.IsPinned, t.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrTrackerNotFound, t.ID)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to toggle pin", "id", t.ID, "err", err)
		return models.Tracker{}, apperrors.Persist("pin toggle", err)
	}
	s.log.Debug("Toggled pin", "id", t.ID, "pinned", t.IsPinned)

	return t, publish(ctx, s.ds, s, s.refreshAndReload)
}

// Filter shows trackers scheduled on date whose name contains searchText
func (s *TrackerStore) Filter(ctx context.Context, date time.Time, searchText string) error {
	return s.FilterWith(ctx, query.Filter{Date: date, SearchText: searchText, Mode: constants.FilterToday})
}

// FilterWith replaces the current filter and re-derives the list
func (s *TrackerStore) FilterWith(ctx context.Context, f query.Filter) error {
	f = f.Resolve(s.opts.now())
	update, err := s.refresh(ctx, &f)
	if err != nil {
		return err
	}
	s.observers.notify(update)
	return nil
}

// Refresh re-derives the list with the current filter
func (s *TrackerStore) Refresh(ctx context.Context) error {
	update, err := s.refresh(ctx, nil)
	if err != nil {
		return err
	}
	s.observers.notify(update)
	return nil
}

func (s *TrackerStore) refreshAndReload(ctx context.Context) error {
	if _, err := s.refresh(ctx, nil); err != nil {
		return err
	}
	s.observers.notify(reload())
	return nil
}

// refresh loads trackers with f, or the current filter when f is nil, and
// swaps in the new layout
func (s *TrackerStore) refresh(ctx context.Context, f *query.Filter) (StoreUpdate, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	filter := s.CurrentFilter()
	if f != nil {
		filter = *f
	}

	type loaded struct {
		categories []models.Category
		trackers   []models.Tracker
		completed  map[uuid.UUID]bool
	}
	data, err := storage.Perform(ctx, s.ds, func(tx *sql.Tx) (loaded, error) {
		var l loaded
		var err error
		if l.categories, err = queryCategories(ctx, tx); err != nil {
			return l, err
		}
		if l.trackers, err = queryTrackers(ctx, tx, ""); err != nil {
			return l, err
		}
		if filter.NeedsRecords() {
			if l.completed, err = completedOn(ctx, tx, filter.Date); err != nil {
				return l, err
			}
		}
		return l, nil
	})
	if err != nil {
		return StoreUpdate{}, fmt.Errorf("failed to load trackers: %w", err)
	}

	categories := make(map[uuid.UUID]models.Category, len(data.categories))
	for _, c := range data.categories {
		categories[c.ID] = c
	}
	sections := buildSections(data.trackers, categories, filter.Predicate(data.completed))

	s.mu.Lock()
	before := trackerSnapshot(s.sections)
	s.filter = filter
	s.sections = sections
	s.categories = categories
	s.mu.Unlock()

	return diff(before, trackerSnapshot(sections)), nil
}

// buildSections lays out the visible trackers: pinned first, then one
// section per category that has a visible unpinned tracker
func buildSections(trackers []models.Tracker, categories map[uuid.UUID]models.Category, pred query.Predicate) []trackerSection {
	var pinned []models.Tracker
	grouped := make(map[uuid.UUID][]models.Tracker)
	for _, t := range trackers {
		if !pred(t) {
			continue
		}
		if t.IsPinned {
			pinned = append(pinned, t)
			continue
		}
		grouped[t.CategoryID] = append(grouped[t.CategoryID], t)
	}

	collator := query.NewNameCollator()
	var sections []trackerSection

	if len(pinned) > 0 {
		slices.SortStableFunc(pinned, func(a, b models.Tracker) int {
			return collator.Compare(a.Name, b.Name)
		})
		sections = append(sections, trackerSection{
			title:    constants.PinnedSectionTitle,
			pinned:   true,
			trackers: pinned,
		})
	}

	var groups []trackerSection
	for id, ts := range grouped {
		c, ok := categories[id]
		if !ok {
			continue
		}
		groups = append(groups, trackerSection{title: c.Name, category: c, trackers: ts})
	}
	slices.SortFunc(groups, func(a, b trackerSection) int {
		if r := collator.Compare(a.title, b.title); r != 0 {
			return r
		}
		if r := a.category.CreatedAt.Compare(b.category.CreatedAt); r != 0 {
			return r
		}
		return bytes.Compare(a.category.ID[:], b.category.ID[:])
	})

	return append(sections, groups...)
}

func trackerSnapshot(sections []trackerSection) []section[uuid.UUID, models.Tracker] {
	out := make([]section[uuid.UUID, models.Tracker], len(sections))
	for i, sec := range sections {
		rows := make([]row[uuid.UUID, models.Tracker], len(sec.trackers))
		for j, t := range sec.trackers {
			rows[j] = row[uuid.UUID, models.Tracker]{key: t.ID, value: t}
		}
		// Category sections are keyed by id so two categories sharing a
		// name still count as different sections
		title := sec.title
		if !sec.pinned {
			title = sec.category.ID.String()
		}
		out[i] = section[uuid.UUID, models.Tracker]{title: title, rows: rows}
	}
	return out
}

func nextPosition(ctx context.Context, tx *sql.Tx, categoryID uuid.UUID) (int, error) {
	var position int
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM trackers WHERE category_id = ?", categoryID).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("failed to compute tracker position: %w", err)
	}
	return position, nil
}

func completedOn(ctx context.Context, tx *sql.Tx, date time.Time) (map[uuid.UUID]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT tracker_id FROM records WHERE execution_date = ?", models.DayKey(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	completed := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		completed[id] = true
	}
	return completed, rows.Err()
}
