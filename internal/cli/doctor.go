package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/storage"
)

type DoctorCmd struct{}

type diagnostic struct {
	name    string
	warning bool
	run     func(*Session) error
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	w := ctx.out()
	fmt.Fprintln(w, "Running diagnostics...")
	fmt.Fprintln(w)

	hasError := false
	report := func(d diagnostic, err error) {
		switch {
		case err == nil:
			fmt.Fprintf(w, "✓ %s: OK\n", d.name)
		case d.warning:
			fmt.Fprintf(w, "⚠ %s: WARNING\n", d.name)
			fmt.Fprintf(w, "   %v\n", err)
		default:
			fmt.Fprintf(w, "❌ %s: FAIL\n", d.name)
			fmt.Fprintf(w, "   Error: %v\n", err)
			hasError = true
		}
	}

	report(diagnostic{name: "Clock/timezone"}, checkClockTimezone(ctx))

	s, err := ctx.Open(ctx.bg())
	report(diagnostic{name: "Database reachable"}, err)

	checks := []diagnostic{
		{name: "Schema version", run: func(s *Session) error { return checkSchemaVersion(ctx.bg(), s) }},
		{name: "Integrity", run: func(s *Session) error { return s.DataStore.QuickCheck(ctx.bg()) }},
		{name: "Data validation", run: func(s *Session) error { return checkData(ctx.bg(), s) }},
		{name: "Backups present", warning: true, run: func(*Session) error { return checkBackupsPresent(ctx) }},
	}
	for _, d := range checks {
		if s == nil {
			fmt.Fprintf(w, "⊘ %s: SKIPPED (database not reachable)\n", d.name)
			continue
		}
		report(d, d.run(s))
	}
	if s != nil {
		s.Close()
	}

	fmt.Fprintln(w)
	if hasError {
		fmt.Fprintln(w, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(w, "All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx context.Context, s *Session) error {
	current, err := s.DataStore.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := storage.LatestSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current != latest {
		return fmt.Errorf("schema version %d does not match supported version %d", current, latest)
	}
	return nil
}

// checkData validates every stored tracker and looks for completion
// records left behind by a deleted tracker
func checkData(ctx context.Context, s *Session) error {
	for i := 0; i < s.Categories.NumberOfRows(); i++ {
		category, _ := s.Categories.Object(i)
		if err := category.Validate(); err != nil {
			return fmt.Errorf("category %s: %w", category.ID, err)
		}
		for _, t := range category.Trackers {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("tracker %s: %w", t.ID, err)
			}
		}
	}

	orphans, err := storage.Perform(ctx, s.DataStore, func(tx *sql.Tx) (int, error) {
		var n int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM records r
			WHERE NOT EXISTS (SELECT 1 FROM trackers t WHERE t.id = r.tracker_id)`).Scan(&n)
		return n, err
	})
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	if orphans > 0 {
		return fmt.Errorf("%d completion record(s) reference a missing tracker", orphans)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'tracker backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now, err := ctx.now()
	if err != nil {
		return err
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
