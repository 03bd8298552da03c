package migration

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func migrationFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(nil))

	version, err := runner.CurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
}

func TestMigrationsSorted(t *testing.T) {
	runner := NewRunner(setupTestDB(t), migrationFS(map[string]string{
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"README.md":       "not a migration",
	}))

	migrations, err := runner.Migrations()
	if err != nil {
		t.Fatalf("Migrations failed: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantNames := []string{"init", "update", "another"}
	for i, m := range migrations {
		if m.Version != i+1 || m.Name != wantNames[i] {
			t.Errorf("migration %d: got version %d name %q, want version %d name %q", i, m.Version, m.Name, i+1, wantNames[i])
		}
	}
}

func TestMigrationsInvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"missing underscore", map[string]string{"001.sql": ""}, "invalid migration filename"},
		{"non numeric version", map[string]string{"abc_init.sql": ""}, "invalid version number"},
		{"zero version", map[string]string{"000_init.sql": ""}, "invalid version number"},
		{"duplicate version", map[string]string{"001_a.sql": "", "01_b.sql": ""}, "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(setupTestDB(t), migrationFS(tt.files)).Migrations()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Migrations() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyIncrementally(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	files := map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
	}
	applied, err := NewRunner(db, migrationFS(files)).Apply(ctx)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied, got %d", applied)
	}

	files["002_posts.sql"] = "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER);"
	runner := NewRunner(db, migrationFS(files))
	applied, err = runner.Apply(ctx)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("expected only the new migration to apply, got %d", applied)
	}

	// Re-running is a no-op
	applied, err = runner.Apply(ctx)
	if err != nil || applied != 0 {
		t.Errorf("third Apply = (%d, %v), want (0, nil)", applied, err)
	}

	version, _ := runner.CurrentVersion(ctx)
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql":   "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;",
	}))

	applied, err := runner.Apply(ctx)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("expected 1 migration applied before failure, got %d", applied)
	}

	version, _ := runner.CurrentVersion(ctx)
	if version != 1 {
		t.Errorf("expected version to stay at 1, got %d", version)
	}

	var count int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE name = 'broken'").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Error("broken migration left a table behind")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE t (id INTEGER);",
		"002_more.sql": "CREATE TABLE u (id INTEGER);",
	}))
	if _, err := runner.Apply(ctx); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	older := NewRunner(db, migrationFS(map[string]string{
		"001_init.sql": "CREATE TABLE t (id INTEGER);",
	}))
	if err := older.ValidateVersion(ctx); err == nil {
		t.Error("expected error validating a database newer than the binary")
	}
	if _, err := older.Apply(ctx); err == nil {
		t.Error("expected Apply to refuse a newer database")
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}

	db := setupTestDB(t)
	if _, err := NewRunner(db, sub).Apply(context.Background()); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"categories", "trackers", "records"} {
		var count int
		if err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count); err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("table %s missing after migrations", table)
		}
	}
}
