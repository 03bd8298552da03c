package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekDay is a day of the week, indexed Monday-first starting at 0
type WeekDay int

const (
	Monday WeekDay = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekDays lists every day in index order
var AllWeekDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekDayTitles = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekDayShortTitles = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Valid reports whether d maps to one of the seven days
func (d WeekDay) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Title returns the full day name
func (d WeekDay) Title() string {
	if !d.Valid() {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return weekDayTitles[d]
}

// ShortTitle returns the abbreviated day name
func (d WeekDay) ShortTitle() string {
	if !d.Valid() {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return weekDayShortTitles[d]
}

func (d WeekDay) String() string {
	return d.Title()
}

// WeekDayOf converts the calendar weekday of t to a WeekDay.
// time.Weekday counts from Sunday=0, WeekDay counts from Monday=0.
func WeekDayOf(t time.Time) WeekDay {
	return WeekDay((int(t.Weekday()) + 6) % 7)
}

// ParseWeekDay accepts full names, short names, or a Monday-first index
func ParseWeekDay(s string) (WeekDay, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, d := range AllWeekDays {
		if s == strings.ToLower(d.Title()) || s == strings.ToLower(d.ShortTitle()) {
			return d, nil
		}
	}
	if idx, err := strconv.Atoi(s); err == nil && WeekDay(idx).Valid() {
		return WeekDay(idx), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// WeekDaySet is a set of WeekDay values stored as a bit mask
type WeekDaySet uint8

// NewWeekDaySet builds a set from the given days, ignoring invalid ones
func NewWeekDaySet(days ...WeekDay) WeekDaySet {
	var s WeekDaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// IrregularSchedule is the schedule of a one-off event: every day of the week
func IrregularSchedule() WeekDaySet {
	return NewWeekDaySet(AllWeekDays...)
}

func (s WeekDaySet) Add(d WeekDay) WeekDaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekDaySet) Remove(d WeekDay) WeekDaySet {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << uint(d))
}

func (s WeekDaySet) Contains(d WeekDay) bool {
	return d.Valid() && s&(1<<uint(d)) != 0
}

// Days returns the members in ascending index order
func (s WeekDaySet) Days() []WeekDay {
	days := make([]WeekDay, 0, 7)
	for _, d := range AllWeekDays {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekDaySet) Len() int {
	return len(s.Days())
}

func (s WeekDaySet) IsEmpty() bool {
	return s.Len() == 0
}

// String renders the set with short titles, e.g. "Mon, Wed"
func (s WeekDaySet) String() string {
	if s == IrregularSchedule() {
		return "Every day"
	}
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = d.ShortTitle()
	}
	return strings.Join(parts, ", ")
}
