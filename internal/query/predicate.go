package query

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/julianstephens/tracker/internal/models"
)

// Predicate selects trackers for a list view
type Predicate func(models.Tracker) bool

// True matches every tracker
func True() Predicate {
	return func(models.Tracker) bool { return true }
}

// And matches trackers accepted by every predicate. Nil predicates are skipped.
func And(preds ...Predicate) Predicate {
	var active []Predicate
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	switch len(active) {
	case 0:
		return True()
	case 1:
		return active[0]
	}
	return func(t models.Tracker) bool {
		for _, p := range active {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// ScheduledOn matches trackers whose schedule contains the weekday of date
func ScheduledOn(date time.Time) Predicate {
	day := models.WeekDayOf(date)
	return func(t models.Tracker) bool {
		return t.Schedule.Contains(day)
	}
}

// NameContains matches trackers whose name contains text, ignoring case and
// diacritics. Blank text matches everything.
func NameContains(text string) Predicate {
	needle := Fold(strings.TrimSpace(text))
	if needle == "" {
		return True()
	}
	return func(t models.Tracker) bool {
		return strings.Contains(Fold(t.Name), needle)
	}
}

// CompletedIn matches trackers present in completed when want is true,
// absent otherwise
func CompletedIn(completed map[uuid.UUID]bool, want bool) Predicate {
	return func(t models.Tracker) bool {
		return completed[t.ID] == want
	}
}

// Fold strips combining marks and case-folds s so "Café" and "CAFE" compare equal
func Fold(s string) string {
	// transform.Chain keeps state, so build a fresh chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
