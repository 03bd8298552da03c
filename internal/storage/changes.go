package storage

import (
	"context"
	"errors"
	"slices"
)

// ChangeFunc reacts to a committed write. origin is the writer, so a
// listener can skip writes it made itself.
type ChangeFunc func(ctx context.Context, origin any) error

type listener struct {
	id int
	fn ChangeFunc
}

// OnChange registers fn to run after every write announced with Changed.
// Call the returned function to remove it.
func (ds *DataStore) OnChange(fn ChangeFunc) func() {
	ds.listenMu.Lock()
	defer ds.listenMu.Unlock()
	id := ds.nextID
	ds.nextID++
	ds.listeners = append(ds.listeners, listener{id: id, fn: fn})

	return func() {
		ds.listenMu.Lock()
		defer ds.listenMu.Unlock()
		ds.listeners = slices.DeleteFunc(ds.listeners, func(l listener) bool { return l.id == id })
	}
}

// Changed runs every listener in registration order on the caller's
// goroutine. Every listener runs even when an earlier one fails; the
// failures are joined. It must not be called from inside an Action.
func (ds *DataStore) Changed(ctx context.Context, origin any) error {
	ds.listenMu.Lock()
	listeners := slices.Clone(ds.listeners)
	ds.listenMu.Unlock()

	var errs []error
	for _, l := range listeners {
		if err := l.fn(ctx, origin); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
