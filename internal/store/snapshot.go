package store

import (
	"slices"

	"github.com/julianstephens/tracker/internal/models"
)

type row[K comparable, V comparable] struct {
	key   K
	value V
}

type section[K comparable, V comparable] struct {
	title string
	rows  []row[K, V]
}

type located[V comparable] struct {
	path  models.IndexPath
	value V
}

func locate[K comparable, V comparable](sections []section[K, V]) map[K]located[V] {
	m := make(map[K]located[V])
	for s, sec := range sections {
		for r, rw := range sec.rows {
			m[rw.key] = located[V]{path: models.IndexPath{Section: s, Row: r}, value: rw.value}
		}
	}
	return m
}

// diff compares two layouts of the same store. Rows are matched by key.
// A change in the section list, or survivors that move relative to each
// other, yields a reload since no insert/delete payload can express it.
func diff[K comparable, V comparable](before, after []section[K, V]) StoreUpdate {
	if len(before) != len(after) {
		return reload()
	}
	for i := range before {
		if before[i].title != after[i].title {
			return reload()
		}
	}

	old := locate(before)
	cur := locate(after)

	var update StoreUpdate
	var oldOrder, newOrder []K

	for s, sec := range before {
		for r, rw := range sec.rows {
			if _, ok := cur[rw.key]; !ok {
				update.Deleted = append(update.Deleted, models.IndexPath{Section: s, Row: r})
				continue
			}
			oldOrder = append(oldOrder, rw.key)
		}
	}

	for s, sec := range after {
		for r, rw := range sec.rows {
			path := models.IndexPath{Section: s, Row: r}
			prev, ok := old[rw.key]
			if !ok {
				update.Inserted = append(update.Inserted, path)
				continue
			}
			if prev.path.Section != s {
				return reload()
			}
			newOrder = append(newOrder, rw.key)
			if prev.value != rw.value {
				update.Updated = append(update.Updated, path)
			}
		}
	}

	if !slices.Equal(oldOrder, newOrder) {
		return reload()
	}
	return update
}
