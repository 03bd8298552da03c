package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/marshal"
	"github.com/julianstephens/tracker/internal/models"
)

const trackerColumns = "id, name, color_hex, emoji, schedule, is_pinned, category_id"

type scanner interface {
	Scan(dest ...any) error
}

func scanTracker(s scanner) (models.Tracker, error) {
	var t models.Tracker
	var colorHex, schedule string
	if err := s.Scan(&t.ID, &t.Name, &colorHex, &t.Emoji, &schedule, &t.IsPinned, &t.CategoryID); err != nil {
		return models.Tracker{}, err
	}
	t.Color = marshal.DecodeColor(colorHex)
	t.Schedule = marshal.DecodeWeekdays(schedule)
	return t, nil
}

func queryTrackers(ctx context.Context, tx *sql.Tx, where string, args ...any) ([]models.Tracker, error) {
	q := "SELECT " + trackerColumns + " FROM trackers"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY position, rowid"

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trackers: %w", err)
	}
	defer rows.Close()

	var trackers []models.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracker: %w", err)
		}
		trackers = append(trackers, t)
	}
	return trackers, rows.Err()
}

func queryCategories(ctx context.Context, tx *sql.Tx) ([]models.Category, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, name, created_at FROM categories ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("category %s: %w", c.ID, err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func categoryExists(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var found int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, id)
	}
	return err
}

func trackerExists(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	var found int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM trackers WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrTrackerNotFound, id)
	}
	return err
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(constants.TimestampFormat, s)
	if err != nil {
		// Accept plain RFC3339 as well
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
