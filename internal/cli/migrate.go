package cli

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/storage"
)

type MigrateCmd struct{}

// Run opens the database, which applies any pending migrations, and
// reports the resulting schema version
func (c *MigrateCmd) Run(ctx *Context) error {
	path, err := ctx.Config.DatabasePath()
	if err != nil {
		return err
	}

	ds, err := storage.Open(ctx.bg(), path)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer ds.Close()

	version, err := ds.SchemaVersion(ctx.bg())
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Database is at schema version %d.\n", version)
	return nil
}
