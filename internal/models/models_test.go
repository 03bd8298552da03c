package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/tracker/internal/errors"
)

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 3, 14, 23, 59, 59, 999, loc)
	got := StartOfDay(in)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Errorf("StartOfDay(%v) = %v, want %v", in, got, want)
	}
}

func TestNewCompletionRecord(t *testing.T) {
	id := uuid.New()
	morning := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 14, 21, 0, 0, 0, time.UTC)

	a := NewCompletionRecord(id, morning)
	b := NewCompletionRecord(id, evening)
	if a != b {
		t.Errorf("records on the same day differ: %v vs %v", a, b)
	}
	if a.Day() != "2025-03-14" {
		t.Errorf("Day() = %q, want %q", a.Day(), "2025-03-14")
	}
}

func TestParseDayKey(t *testing.T) {
	got, err := ParseDayKey("2025-03-14", time.UTC)
	if err != nil {
		t.Fatalf("ParseDayKey() error = %v", err)
	}
	if !got.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseDayKey() = %v", got)
	}
	if _, err := ParseDayKey("14/03/2025", time.UTC); err == nil {
		t.Error("expected error for malformed day key")
	}
}

func TestIsFutureDay(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"earlier today", now.Add(-6 * time.Hour), false},
		{"later today", now.Add(11 * time.Hour), false},
		{"yesterday", now.AddDate(0, 0, -1), false},
		{"tomorrow", now.AddDate(0, 0, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFutureDay(tt.day, now); got != tt.want {
				t.Errorf("IsFutureDay(%v) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestTrackerValidate(t *testing.T) {
	tests := []struct {
		name    string
		tracker Tracker
		wantErr error
	}{
		{
			name:    "valid",
			tracker: Tracker{Name: "Drink water", Schedule: NewWeekDaySet(Monday)},
		},
		{
			name:    "blank name",
			tracker: Tracker{Name: "  ", Schedule: NewWeekDaySet(Monday)},
			wantErr: apperrors.ErrEmptyName,
		},
		{
			name:    "empty schedule",
			tracker: Tracker{Name: "Drink water"},
			wantErr: apperrors.ErrEmptySchedule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tracker.Validate()
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrackerIsIrregular(t *testing.T) {
	if !(Tracker{Schedule: IrregularSchedule()}).IsIrregular() {
		t.Error("tracker with every day should be irregular")
	}
	if (Tracker{Schedule: NewWeekDaySet(Monday)}).IsIrregular() {
		t.Error("tracker with one day should not be irregular")
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Health"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := (Category{}).Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Validate() error = %v, want validation error", err)
	}
}
