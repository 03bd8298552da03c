package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
)

// CompletionRecord marks a tracker as done on a calendar day
type CompletionRecord struct {
	TrackerID     uuid.UUID
	ExecutionDate time.Time
}

// NewCompletionRecord builds a record with its date normalized to midnight
func NewCompletionRecord(trackerID uuid.UUID, date time.Time) CompletionRecord {
	return CompletionRecord{TrackerID: trackerID, ExecutionDate: StartOfDay(date)}
}

// Day returns the YYYY-MM-DD key the record is stored under
func (r CompletionRecord) Day() string {
	return DayKey(r.ExecutionDate)
}

// StartOfDay drops the time of day, keeping the location of t
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats t as a day key in its own location
func DayKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDayKey parses a YYYY-MM-DD key as midnight in loc
func ParseDayKey(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(constants.DateFormat, day, loc)
}

// IsFutureDay reports whether day falls after the calendar day of now
func IsFutureDay(day, now time.Time) bool {
	return DayKey(day) > DayKey(now.In(day.Location()))
}
