package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/storage"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")

	ds, err := storage.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer ds.Close()

	err = ds.Exec(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO categories (id, name, created_at) VALUES
			('c1', 'Health', '2025-01-01T00:00:00Z'),
			('c2', 'Work', '2025-01-02T00:00:00Z')`)
		return err
	})
	if err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countCategories(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("failed to count categories in %s: %v", path, err)
	}
	return count
}

func insertCategory(t *testing.T, path, id string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("INSERT INTO categories (id, name, created_at) VALUES (?, 'Extra', '2025-01-03T00:00:00Z')", id); err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}
}

// tickingManager returns a manager whose clock advances one minute per backup
func tickingManager(dbPath string) *Manager {
	mgr := NewManager(dbPath)
	current := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
	return mgr
}

func TestCreate_FromFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if filepath.Dir(backupPath) != mgr.Dir() {
		t.Errorf("backup written to %s, want directory %s", backupPath, mgr.Dir())
	}
	if got := countCategories(t, backupPath); got != 2 {
		t.Errorf("expected 2 categories in backup, got %d", got)
	}
}

func TestCreate_FromOpenStore(t *testing.T) {
	dbPath := setupTestDB(t)
	ds, err := storage.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer ds.Close()

	backupPath, err := NewManager(dbPath).Create(context.Background(), ds)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := countCategories(t, backupPath); got != 2 {
		t.Errorf("expected 2 categories in backup, got %d", got)
	}
}

func TestCreate_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))

	if _, err := mgr.Create(context.Background(), nil); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestCreate_SameSecondNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	var paths []string
	for i := 0; i < 3; i++ {
		p, err := mgr.Create(context.Background(), nil)
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		paths = append(paths, filepath.Base(p))
	}

	want := []string{"tracker-20250301-080000.db", "tracker-20250301-080000-1.db", "tracker-20250301-080000-2.db"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("backup %d named %s, want %s", i, paths[i], want[i])
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 || filepath.Base(backups[0].Path) != want[2] {
		t.Errorf("expected the highest counter first, got %+v", backups)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := tickingManager(dbPath)

	numBackups := constants.MaxBackups + 5
	var newest string
	for i := 0; i < numBackups; i++ {
		p, err := mgr.Create(context.Background(), nil)
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		newest = p
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	if backups[0].Path != newest {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, newest)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted correctly: backup %d is newer than backup %d", i, i-1)
		}
	}
}

func TestList(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := tickingManager(dbPath)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(context.Background(), nil); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}

	// Files that do not look like backups are ignored
	for _, name := range []string{"notes.txt", "tracker-garbage.db", "tracker-20250301-0800.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name        string
		wantOK      bool
		wantCounter int
	}{
		{"tracker-20250301-080000.db", true, 0},
		{"tracker-20250301-080000-12.db", true, 12},
		{"tracker-20250301-080000-x.db", false, 0},
		{"tracker-20250301-080000-0.db", false, 0},
		{"other-20250301-080000.db", false, 0},
		{"tracker-20250301-080000.sqlite", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, counter, ok := parseName(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if counter != tt.wantCounter {
				t.Errorf("counter = %d, want %d", counter, tt.wantCounter)
			}
			if ts.Hour() != 8 || ts.Day() != 1 {
				t.Errorf("unexpected timestamp %v", ts)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := tickingManager(dbPath)

	backupPath, err := mgr.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	insertCategory(t, dbPath, "c3")
	if got := countCategories(t, dbPath); got != 3 {
		t.Fatalf("expected 3 categories before restore, got %d", got)
	}

	previous, err := mgr.Restore(context.Background(), backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got := countCategories(t, dbPath); got != 2 {
		t.Errorf("expected 2 categories after restore, got %d", got)
	}
	if got := countCategories(t, previous); got != 3 {
		t.Errorf("pre-restore backup should hold 3 categories, got %d", got)
	}

	// The restored file opens as a store again
	ds, err := storage.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to reopen restored database: %v", err)
	}
	ds.Close()
}

func TestRestore_InvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("this is not a sqlite database, just some text padding it out"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(context.Background(), bogus); err == nil {
		t.Error("expected error for corrupt backup")
	}

	if got := countCategories(t, dbPath); got != 2 {
		t.Errorf("failed restore must leave the database alone, got %d categories", got)
	}
}
