package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/tracker/internal/errors"
)

// Category is a named group of trackers
type Category struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Trackers  []Tracker
}

// Validate checks the fields a store requires before persisting a category
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.ErrEmptyName
	}
	return nil
}
