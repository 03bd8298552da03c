package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/query"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/store"
)

// Context is bound into every command's Run method
type Context struct {
	Ctx    context.Context
	Config config.Config
	Out    io.Writer
	In     io.Reader
	Now    func() time.Time
}

// Session is an open database with its three stores
type Session struct {
	DataStore  *storage.DataStore
	Categories *store.CategoryStore
	Trackers   *store.TrackerStore
	Records    *store.RecordStore
}

func (c *Context) bg() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// now returns the current time in the configured time zone
func (c *Context) now() (time.Time, error) {
	loc, err := c.Config.Location()
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(loc), nil
}

// Open opens the database and loads the stores. Callers must Close it.
func (c *Context) Open(ctx context.Context) (*Session, error) {
	path, err := c.Config.DatabasePath()
	if err != nil {
		return nil, err
	}
	ds, err := storage.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	clock := store.WithClock(func() time.Time {
		now, err := c.now()
		if err != nil {
			return time.Now()
		}
		return now
	})

	s := &Session{DataStore: ds}
	if s.Categories, err = store.NewCategoryStore(ctx, ds, clock); err != nil {
		ds.Close()
		return nil, err
	}
	if s.Trackers, err = store.NewTrackerStore(ctx, ds, clock); err != nil {
		ds.Close()
		return nil, err
	}
	if s.Records, err = store.NewRecordStore(ctx, ds, clock); err != nil {
		ds.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) Close() error {
	return s.DataStore.Close()
}

// findTracker looks a tracker up by name across every day and category
func (s *Session) findTracker(ctx context.Context, name string) (models.Tracker, models.IndexPath, error) {
	if err := s.Trackers.FilterWith(ctx, query.Filter{Mode: constants.FilterAll}); err != nil {
		return models.Tracker{}, models.IndexPath{}, err
	}
	t, path, ok := s.Trackers.FindByName(name)
	if !ok {
		return models.Tracker{}, models.IndexPath{}, fmt.Errorf("%w: %q", apperrors.ErrTrackerNotFound, name)
	}
	return t, path, nil
}

func (s *Session) findCategory(name string) (models.Category, int, error) {
	c, index, ok := s.Categories.FindByName(name)
	if !ok {
		return models.Category{}, -1, fmt.Errorf("%w: %q", apperrors.ErrCategoryNotFound, name)
	}
	return c, index, nil
}

// parseDate parses a YYYY-MM-DD day in the configured zone. Empty means today.
func (c *Context) parseDate(day string) (time.Time, error) {
	now, err := c.now()
	if err != nil {
		return time.Time{}, err
	}
	if day == "" {
		return now, nil
	}
	t, err := models.ParseDayKey(day, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return t, nil
}

// parseDays parses a comma-separated weekday list
func parseDays(s string) (models.WeekDaySet, error) {
	var set models.WeekDaySet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := models.ParseWeekDay(part)
		if err != nil {
			return 0, err
		}
		set = set.Add(d)
	}
	return set, nil
}

// confirm asks a yes/no question, defaulting to no
func (c *Context) confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out(), "%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
