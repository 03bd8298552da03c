package store

import (
	"context"

	"github.com/julianstephens/tracker/internal/storage"
)

// follow refreshes a store after writes made through any other store that
// shares ds. Trackers depend on categories and records, and categories
// embed their trackers, so every store listens to every other one.
func follow(ds *storage.DataStore, self any, refresh func(context.Context) error) {
	ds.OnChange(func(ctx context.Context, origin any) error {
		if origin == self {
			return nil
		}
		return refresh(ctx)
	})
}

// publish re-derives the writer's own view, then the other stores' views.
// Each refresh notifies its own observers.
func publish(ctx context.Context, ds *storage.DataStore, self any, refresh func(context.Context) error) error {
	if err := refresh(ctx); err != nil {
		return err
	}
	return ds.Changed(ctx, self)
}
