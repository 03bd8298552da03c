package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/julianstephens/tracker/internal/marshal"
	"github.com/julianstephens/tracker/internal/models"
)

type DebugCmd struct {
	DBPath      *DebugDBPathCmd      `cmd:"" help:"Show database path."`
	DumpTracker *DebugDumpTrackerCmd `cmd:"" help:"Dump tracker data as JSON."`
	DumpDay     *DebugDumpDayCmd     `cmd:"" help:"Dump the trackers completed on a day as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	path, err := ctx.Config.DatabasePath()
	if err != nil {
		return err
	}
	return writeJSON(ctx, map[string]string{"path": path})
}

type trackerDump struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	Emoji      string   `json:"emoji,omitempty"`
	Schedule   []string `json:"schedule"`
	Pinned     bool     `json:"pinned"`
	CategoryID string   `json:"category_id"`
	Completed  int      `json:"completed"`
}

func dumpTracker(t models.Tracker, completed int) trackerDump {
	days := t.Schedule.Days()
	schedule := make([]string, len(days))
	for i, d := range days {
		schedule[i] = d.Title()
	}
	return trackerDump{
		ID:         t.ID.String(),
		Name:       t.Name,
		Color:      marshal.EncodeColor(t.Color),
		Emoji:      t.Emoji,
		Schedule:   schedule,
		Pinned:     t.IsPinned,
		CategoryID: t.CategoryID.String(),
		Completed:  completed,
	}
}

type DebugDumpTrackerCmd struct {
	Name string `arg:"" help:"Name of the tracker to dump."`
}

func (cmd *DebugDumpTrackerCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, _, err := s.findTracker(ctx.bg(), cmd.Name)
	if err != nil {
		return err
	}
	completed, err := s.Records.CompletedTrackers(ctx.bg(), t.ID)
	if err != nil {
		return err
	}
	return writeJSON(ctx, dumpTracker(t, completed))
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Day in YYYY-MM-DD format (default: today)."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(cmd.Date)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.Records.CompletedTrackerIDs(ctx.bg(), date)
	if err != nil {
		return err
	}
	completed := make([]string, 0, len(ids))
	for id := range ids {
		completed = append(completed, id.String())
	}
	// map iteration order is random
	slices.Sort(completed)

	return writeJSON(ctx, map[string]any{
		"date":      models.DayKey(date),
		"completed": completed,
	})
}

func writeJSON(ctx *Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.out(), string(jsonBytes))
	return nil
}
