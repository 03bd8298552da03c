package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

type recordKey struct {
	trackerID uuid.UUID
	day       string
}

// RecordStore holds completion records. Its live list is every record
// ordered by day, then tracker id.
type RecordStore struct {
	ds   *storage.DataStore
	opts options
	log  *log.Logger

	mu      sync.RWMutex
	records []recordKey

	refreshMu sync.Mutex
	observers observers
}

func NewRecordStore(ctx context.Context, ds *storage.DataStore, opts ...Option) (*RecordStore, error) {
	s := &RecordStore{
		ds:   ds,
		opts: newOptions(opts),
		log:  logger.With("store", "record"),
	}
	if _, err := s.refresh(ctx); err != nil {
		return nil, err
	}
	follow(ds, s, s.Refresh)
	return s, nil
}

// Subscribe registers obs for change notifications. Call the returned
// function to unsubscribe.
func (s *RecordStore) Subscribe(obs Observer) func() {
	return s.observers.subscribe(obs)
}

func (s *RecordStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) == 0
}

// FetchNumberOfAllRecords counts records across all trackers and days
func (s *RecordStore) FetchNumberOfAllRecords(ctx context.Context) (int, error) {
	return storage.Perform(ctx, s.ds, func(tx *sql.Tx) (int, error) {
		var n int
		err := tx.QueryRowContext(ctx, "SELECT count(*) FROM records").Scan(&n)
		return n, err
	})
}

// IsTrackerCompletedToday reports whether the tracker has a record on the
// calendar day of date
func (s *RecordStore) IsTrackerCompletedToday(ctx context.Context, trackerID uuid.UUID, date time.Time) (bool, error) {
	_, found, err := s.FetchRecord(ctx, trackerID, date)
	return found, err
}

// CompletedTrackers counts the days the tracker was completed
func (s *RecordStore) CompletedTrackers(ctx context.Context, trackerID uuid.UUID) (int, error) {
	return storage.Perform(ctx, s.ds, func(tx *sql.Tx) (int, error) {
		var n int
		err := tx.QueryRowContext(ctx, "SELECT count(*) FROM records WHERE tracker_id = ?", trackerID).Scan(&n)
		return n, err
	})
}

// FetchRecord looks up the record for the tracker on the calendar day of date
func (s *RecordStore) FetchRecord(ctx context.Context, trackerID uuid.UUID, date time.Time) (models.CompletionRecord, bool, error) {
	rec := models.NewCompletionRecord(trackerID, date)
	found, err := storage.Perform(ctx, s.ds, func(tx *sql.Tx) (bool, error) {
		return recordExists(ctx, tx, rec)
	})
	if err != nil || !found {
		return models.CompletionRecord{}, false, err
	}
	return rec, true, nil
}

// CompletedTrackerIDs returns the trackers completed on the calendar day of date
func (s *RecordStore) CompletedTrackerIDs(ctx context.Context, date time.Time) (map[uuid.UUID]bool, error) {
	return storage.Perform(ctx, s.ds, func(tx *sql.Tx) (map[uuid.UUID]bool, error) {
		return completedOn(ctx, tx, date)
	})
}

// Add marks the tracker complete on the record's day. A day after today,
// an unknown tracker, or an existing record for that day are rejected.
func (s *RecordStore) Add(ctx context.Context, rec models.CompletionRecord, trackerID uuid.UUID) error {
	rec = models.NewCompletionRecord(trackerID, rec.ExecutionDate)
	if models.IsFutureDay(rec.ExecutionDate, s.opts.now()) {
		return fmt.Errorf("%w: %s", apperrors.ErrFutureDate, rec.Day())
	}

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		return s.insert(ctx, tx, rec)
	})
	if err != nil {
		s.log.Error("Failed to add record", "tracker", trackerID, "day", rec.Day(), "err", err)
		return apperrors.Persist("record", err)
	}
	s.log.Debug("Added record", "tracker", trackerID, "day", rec.Day())

	return publish(ctx, s.ds, s, s.Refresh)
}

// Delete removes the record for its tracker and day. Deleting a missing
// record is not an error.
func (s *RecordStore) Delete(ctx context.Context, rec models.CompletionRecord) error {
	rec = models.NewCompletionRecord(rec.TrackerID, rec.ExecutionDate)

	err := s.ds.Exec(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM records WHERE tracker_id = ? AND execution_date = ?",
			rec.TrackerID, rec.Day())
		return err
	})
	if err != nil {
		s.log.Error("Failed to delete record", "tracker", rec.TrackerID, "day", rec.Day(), "err", err)
		return apperrors.Persist("record deletion", err)
	}
	s.log.Debug("Deleted record", "tracker", rec.TrackerID, "day", rec.Day())

	return publish(ctx, s.ds, s, s.Refresh)
}

// Toggle marks the tracker complete on date if it is not, and incomplete
// otherwise. It returns the new completion state.
func (s *RecordStore) Toggle(ctx context.Context, trackerID uuid.UUID, date time.Time) (bool, error) {
	rec := models.NewCompletionRecord(trackerID, date)

	completed, err := storage.Perform(ctx, s.ds, func(tx *sql.Tx) (bool, error) {
		exists, err := recordExists(ctx, tx, rec)
		if err != nil {
			return false, err
		}
		if exists {
			_, err := tx.ExecContext(ctx, "DELETE FROM records WHERE tracker_id = ? AND execution_date = ?",
				rec.TrackerID, rec.Day())
			return false, err
		}
		if models.IsFutureDay(rec.ExecutionDate, s.opts.now()) {
			return false, fmt.Errorf("%w: %s", apperrors.ErrFutureDate, rec.Day())
		}
		return true, s.insert(ctx, tx, rec)
	})
	if err != nil {
		s.log.Error("Failed to toggle record", "tracker", trackerID, "day", rec.Day(), "err", err)
		return false, apperrors.Persist("record toggle", err)
	}
	s.log.Debug("Toggled record", "tracker", trackerID, "day", rec.Day(), "completed", completed)

	return completed, publish(ctx, s.ds, s, s.Refresh)
}

// insert checks and writes within one action so two completions for the
// same day can never both land
func (s *RecordStore) insert(ctx context.Context, tx *sql.Tx, rec models.CompletionRecord) error {
	if err := trackerExists(ctx, tx, rec.TrackerID); err != nil {
		return err
	}
	exists, err := recordExists(ctx, tx, rec)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyCompleted, rec.Day())
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO records (tracker_id, execution_date, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		rec.TrackerID, rec.Day(), formatTimestamp(s.opts.now()))
	return err
}

func recordExists(ctx context.Context, tx *sql.Tx, rec models.CompletionRecord) (bool, error) {
	var found int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM records WHERE tracker_id = ? AND execution_date = ?",
		rec.TrackerID, rec.Day()).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query record: %w", err)
	}
	return true, nil
}

// Refresh re-reads the record list and notifies observers of any difference
func (s *RecordStore) Refresh(ctx context.Context) error {
	update, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	s.observers.notify(update)
	return nil
}

func (s *RecordStore) refresh(ctx context.Context) (StoreUpdate, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	records, err := storage.Perform(ctx, s.ds, func(tx *sql.Tx) ([]recordKey, error) {
		rows, err := tx.QueryContext(ctx, "SELECT tracker_id, execution_date FROM records ORDER BY execution_date, tracker_id")
		if err != nil {
			return nil, fmt.Errorf("failed to query records: %w", err)
		}
		defer rows.Close()

		var records []recordKey
		for rows.Next() {
			var k recordKey
			if err := rows.Scan(&k.trackerID, &k.day); err != nil {
				return nil, fmt.Errorf("failed to scan record: %w", err)
			}
			records = append(records, k)
		}
		return records, rows.Err()
	})
	if err != nil {
		return StoreUpdate{}, fmt.Errorf("failed to load records: %w", err)
	}

	s.mu.Lock()
	before := recordSnapshot(s.records)
	s.records = records
	s.mu.Unlock()

	return diff(before, recordSnapshot(records)), nil
}

func recordSnapshot(records []recordKey) []section[recordKey, struct{}] {
	rows := make([]row[recordKey, struct{}], len(records))
	for i, k := range records {
		rows[i] = row[recordKey, struct{}]{key: k}
	}
	return []section[recordKey, struct{}]{{rows: rows}}
}
