package query

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
)

// Filter describes what a tracker list view shows
type Filter struct {
	// Date is the day being viewed. A zero Date drops the weekday constraint.
	Date       time.Time
	SearchText string
	Mode       constants.FilterMode
}

// ParseMode converts a mode name into a FilterMode. Empty means FilterToday.
func ParseMode(s string) (constants.FilterMode, error) {
	switch constants.FilterMode(s) {
	case "":
		return constants.FilterToday, nil
	case constants.FilterAll, constants.FilterToday, constants.FilterCompleted, constants.FilterUncompleted:
		return constants.FilterMode(s), nil
	}
	return "", fmt.Errorf("unknown filter mode %q", s)
}

// Resolve fills in defaults: an empty mode becomes FilterToday, and every
// mode except FilterAll views now when no date is set
func (f Filter) Resolve(now time.Time) Filter {
	if f.Mode == "" {
		f.Mode = constants.FilterToday
	}
	if f.Mode != constants.FilterAll && f.Date.IsZero() {
		f.Date = now
	}
	return f
}

// NeedsRecords reports whether the predicate depends on completion records
func (f Filter) NeedsRecords() bool {
	return f.Mode == constants.FilterCompleted || f.Mode == constants.FilterUncompleted
}

// Predicate composes the filter into a single tracker predicate. completed
// holds the ids of trackers completed on f.Date and is only consulted when
// NeedsRecords is true.
func (f Filter) Predicate(completed map[uuid.UUID]bool) Predicate {
	preds := []Predicate{NameContains(f.SearchText)}

	if f.Mode != constants.FilterAll && !f.Date.IsZero() {
		preds = append(preds, ScheduledOn(f.Date))
	}

	switch f.Mode {
	case constants.FilterCompleted:
		preds = append(preds, CompletedIn(completed, true))
	case constants.FilterUncompleted:
		preds = append(preds, CompletedIn(completed, false))
	}

	return And(preds...)
}
