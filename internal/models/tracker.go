package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	apperrors "github.com/julianstephens/tracker/internal/errors"
)

// Tracker is a recurring habit or one-off event.
// Tracker values are comparable with ==.
type Tracker struct {
	ID         uuid.UUID
	Name       string
	Color      colorful.Color
	Emoji      string
	Schedule   WeekDaySet
	IsPinned   bool
	CategoryID uuid.UUID
}

// IsIrregular reports whether the tracker recurs on every day of the week
func (t Tracker) IsIrregular() bool {
	return t.Schedule == IrregularSchedule()
}

// Validate checks the fields a store requires before persisting a tracker
func (t Tracker) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return apperrors.ErrEmptyName
	}
	if t.Schedule.IsEmpty() {
		return apperrors.ErrEmptySchedule
	}
	return nil
}
