package store

import (
	"sort"
	"sync"

	"github.com/julianstephens/tracker/internal/models"
)

// StoreUpdate describes how a store's rows changed after a refresh.
// Inserted and Updated paths refer to the new layout, Deleted paths to the
// old one. When Reload is set the paths are empty and observers should
// re-read everything.
type StoreUpdate struct {
	Inserted []models.IndexPath
	Deleted  []models.IndexPath
	Updated  []models.IndexPath
	Reload   bool
}

// IsEmpty reports whether the update carries no change at all
func (u StoreUpdate) IsEmpty() bool {
	return !u.Reload && len(u.Inserted) == 0 && len(u.Deleted) == 0 && len(u.Updated) == 0
}

func reload() StoreUpdate {
	return StoreUpdate{Reload: true}
}

// Observer receives change notifications from a store
type Observer interface {
	DidUpdate(update StoreUpdate)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(update StoreUpdate)

func (f ObserverFunc) DidUpdate(update StoreUpdate) {
	f(update)
}

type observers struct {
	mu   sync.Mutex
	next int
	subs map[int]Observer
}

// subscribe registers o and returns a function that removes it
func (o *observers) subscribe(obs Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subs == nil {
		o.subs = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.subs[id] = obs

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// notify delivers u to every observer in subscription order. It must be
// called without holding any store lock so observers can read back.
func (o *observers) notify(u StoreUpdate) {
	if u.IsEmpty() {
		return
	}

	o.mu.Lock()
	ids := make([]int, 0, len(o.subs))
	for id := range o.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	targets := make([]Observer, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, o.subs[id])
	}
	o.mu.Unlock()

	for _, obs := range targets {
		obs.DidUpdate(u)
	}
}
