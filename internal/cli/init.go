package cli

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/storage"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	path, err := ctx.Config.DatabasePath()
	if err != nil {
		return err
	}
	ds, err := storage.Open(ctx.bg(), path)
	if err != nil {
		return err
	}
	if err := ds.Close(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.out(), "Initialized tracker storage at: %s\n", path)
	return nil
}
