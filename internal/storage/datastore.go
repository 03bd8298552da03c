package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/migration"
	"github.com/julianstephens/tracker/migrations"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Action runs inside a transaction on the executor goroutine.
// Actions must not call back into the DataStore.
type Action func(tx *sql.Tx) error

type job struct {
	ctx    context.Context
	action Action
	// direct runs outside a transaction, for statements such as VACUUM
	direct func(db *sql.DB) error
	result chan error
}

// DataStore owns the SQLite handle and funnels every read and write through
// one executor goroutine, so actions run strictly in submission order.
type DataStore struct {
	path string
	db   *sql.DB

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}

	listenMu  sync.Mutex
	listeners []listener
	nextID    int
}

// Open creates the parent directory, opens the database, applies pending
// migrations and starts the executor. Any failure is reported as
// ErrStoreUnavailable so callers can decide whether to retry or give up.
func Open(ctx context.Context, path string) (*DataStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("%w: failed to create config directory: %w", apperrors.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", apperrors.ErrStoreUnavailable, err)
	}

	// A single connection keeps SQLite to one writer and lets an in-memory
	// database survive between actions
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := prepare(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}

	ds := &DataStore{
		path: path,
		db:   db,
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	go ds.run()

	logger.Debug("Opened data store", "path", path)
	return ds, nil
}

func dsn(path string) string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", path, constants.BusyTimeoutMs)
}

func prepare(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	runner, err := newMigrationRunner(db)
	if err != nil {
		return err
	}
	if _, err := runner.Apply(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func newMigrationRunner(db *sql.DB) (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, sub), nil
}

func (ds *DataStore) run() {
	defer close(ds.done)
	for j := range ds.jobs {
		j.result <- ds.execute(j)
	}
}

func (ds *DataStore) execute(j job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}
	if j.direct != nil {
		return j.direct(ds.db)
	}

	tx, err := ds.db.BeginTx(j.ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("storage action panicked: %v", p)
		}
	}()

	if err := j.action(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exec runs action in its own transaction on the executor and blocks until it
// has committed or rolled back. ctx is honored while waiting for the executor
// and is passed to the transaction.
func (ds *DataStore) Exec(ctx context.Context, action Action) error {
	return ds.submit(ctx, job{ctx: ctx, action: action})
}

func (ds *DataStore) submit(ctx context.Context, j job) error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return apperrors.ErrStoreClosed
	}

	j.result = make(chan error, 1)
	select {
	case ds.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.result
}

// Perform is Exec for actions that produce a value
func Perform[R any](ctx context.Context, ds *DataStore, action func(tx *sql.Tx) (R, error)) (R, error) {
	var result R
	err := ds.Exec(ctx, func(tx *sql.Tx) error {
		r, err := action(tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// VacuumInto writes a compacted copy of the database to dest. It runs on the
// executor between actions, so the copy never contains a partial write.
func (ds *DataStore) VacuumInto(ctx context.Context, dest string) error {
	return ds.submit(ctx, job{ctx: ctx, direct: func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
			return fmt.Errorf("failed to vacuum into %s: %w", dest, err)
		}
		return nil
	}})
}

// SchemaVersion reports the applied migration version
func (ds *DataStore) SchemaVersion(ctx context.Context) (int, error) {
	return Perform(ctx, ds, func(tx *sql.Tx) (int, error) {
		var version int
		err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version)
		return version, err
	})
}

// Path returns the database file path, or MemoryPath
func (ds *DataStore) Path() string {
	return ds.path
}

// Close stops the executor once queued actions finish and closes the database.
// Calling Close more than once is safe.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	close(ds.jobs)
	ds.mu.Unlock()

	<-ds.done
	logger.Debug("Closed data store", "path", ds.path)
	return ds.db.Close()
}

// LatestSchemaVersion reports the newest migration shipped with this build
func LatestSchemaVersion() (int, error) {
	runner, err := newMigrationRunner(nil)
	if err != nil {
		return 0, err
	}
	return runner.LatestVersion()
}

// QuickCheck runs PRAGMA quick_check and fails unless SQLite reports "ok"
func (ds *DataStore) QuickCheck(ctx context.Context) error {
	result, err := Perform(ctx, ds, func(tx *sql.Tx) (string, error) {
		var result string
		err := tx.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result)
		return result, err
	})
	if err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
