package cli

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/marshal"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/query"
)

type TrackerCmd struct {
	Add    TrackerAddCmd    `cmd:"" help:"Add a tracker to a category."`
	Edit   TrackerEditCmd   `cmd:"" help:"Edit an existing tracker."`
	Delete TrackerDeleteCmd `cmd:"" help:"Delete a tracker and its completion history."`
	Pin    TrackerPinCmd    `cmd:"" help:"Pin or unpin a tracker."`
	List   TrackerListCmd   `cmd:"" help:"List trackers for a day." default:"1"`
	Show   TrackerShowCmd   `cmd:"" help:"Show a tracker and its statistics."`
}

type TrackerAddCmd struct {
	Name      string `arg:"" help:"Tracker name."`
	Category  string `short:"c" required:"" help:"Category name."`
	Days      string `help:"Comma-separated weekdays (mon,wed or 0,2 with Monday=0)."`
	Irregular bool   `help:"One-off event shown on every day."`
	Color     string `help:"Color as #rrggbb." default:"#aeafb4"`
	Emoji     string `help:"Emoji shown before the name."`
	Pinned    bool   `help:"Pin the tracker."`
}

func (c *TrackerAddCmd) Run(ctx *Context) error {
	schedule, err := scheduleFlags(c.Days, c.Irregular)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	category, _, err := s.findCategory(c.Category)
	if err != nil {
		return err
	}
	if _, _, err := s.findTracker(ctx.bg(), c.Name); err == nil {
		return fmt.Errorf("tracker with name %q already exists", c.Name)
	}

	t, err := s.Trackers.AddTracker(ctx.bg(), models.Tracker{
		Name:     c.Name,
		Color:    marshal.DecodeColor(c.Color),
		Emoji:    c.Emoji,
		Schedule: schedule,
		IsPinned: c.Pinned,
	}, category.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Added tracker: %s %s (%s)\n", swatch(t), t.Name, t.Schedule)
	return nil
}

type TrackerEditCmd struct {
	Name      string  `arg:"" help:"Tracker name."`
	Rename    *string `help:"New name."`
	Category  *string `short:"c" help:"Move to this category."`
	Days      *string `help:"New comma-separated weekdays."`
	Irregular bool    `help:"Show on every day."`
	Color     *string `help:"New color as #rrggbb."`
	Emoji     *string `help:"New emoji."`
}

func (c *TrackerEditCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, _, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}

	if c.Rename != nil {
		t.Name = *c.Rename
	}
	if c.Color != nil {
		t.Color = marshal.DecodeColor(*c.Color)
	}
	if c.Emoji != nil {
		t.Emoji = *c.Emoji
	}
	if c.Days != nil || c.Irregular {
		days := ""
		if c.Days != nil {
			days = *c.Days
		}
		if t.Schedule, err = scheduleFlags(days, c.Irregular); err != nil {
			return err
		}
	}

	var categoryID *uuid.UUID
	if c.Category != nil {
		category, _, err := s.findCategory(*c.Category)
		if err != nil {
			return err
		}
		categoryID = &category.ID
	}
	if err := s.Trackers.UpdateTracker(ctx.bg(), t, categoryID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Updated tracker: %s\n", t.Name)
	return nil
}

type TrackerDeleteCmd struct {
	Name string `arg:"" help:"Tracker name."`
	Yes  bool   `short:"y" help:"Skip confirmation."`
}

func (c *TrackerDeleteCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, path, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Delete %q and its completion history?", t.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.out(), "Delete cancelled.")
			return nil
		}
	}

	if err := s.Trackers.DeleteTracker(ctx.bg(), path); err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Deleted tracker: %s\n", t.Name)
	return nil
}

type TrackerPinCmd struct {
	Name string `arg:"" help:"Tracker name."`
}

func (c *TrackerPinCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	_, path, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}

	t, err := s.Trackers.PinTrackerToggle(ctx.bg(), path)
	if err != nil {
		return err
	}

	if t.IsPinned {
		fmt.Fprintf(ctx.out(), "Pinned tracker: %s\n", t.Name)
	} else {
		fmt.Fprintf(ctx.out(), "Unpinned tracker: %s\n", t.Name)
	}
	return nil
}

type TrackerListCmd struct {
	Date   string `help:"Day in YYYY-MM-DD format (default: today)."`
	Search string `short:"s" help:"Only show trackers whose name contains this text."`
	Mode   string `help:"Filter mode: all, today, completed, uncompleted." enum:"all,today,completed,uncompleted" default:"today"`
}

func (c *TrackerListCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(c.Date)
	if err != nil {
		return err
	}
	mode, err := query.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Trackers.FilterWith(ctx.bg(), query.Filter{Date: date, SearchText: c.Search, Mode: mode}); err != nil {
		return err
	}
	completed, err := s.Records.CompletedTrackerIDs(ctx.bg(), date)
	if err != nil {
		return err
	}

	if s.Trackers.IsEmpty() {
		if mode == constants.FilterAll {
			fmt.Fprintln(ctx.out(), "No trackers found.")
		} else {
			fmt.Fprintf(ctx.out(), "No trackers for %s.\n", models.DayKey(date))
		}
		return nil
	}

	if mode != constants.FilterAll {
		fmt.Fprintf(ctx.out(), "%s (%s)\n\n", models.DayKey(date), models.WeekDayOf(date).Title())
	}
	renderTrackers(ctx.out(), s.Trackers, completed)
	return nil
}

type TrackerShowCmd struct {
	Name string `arg:"" help:"Tracker name."`
}

func (c *TrackerShowCmd) Run(ctx *Context) error {
	today, err := ctx.parseDate("")
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, path, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}
	category, _ := s.Trackers.Category(path)
	total, err := s.Records.CompletedTrackers(ctx.bg(), t.ID)
	if err != nil {
		return err
	}
	doneToday, err := s.Records.IsTrackerCompletedToday(ctx.bg(), t.ID, today)
	if err != nil {
		return err
	}

	w := ctx.out()
	fmt.Fprintf(w, "%s %s\n", swatch(t), headerStyle.Render(t.Name))
	fmt.Fprintf(w, "  Category:  %s\n", category.Name)
	fmt.Fprintf(w, "  Schedule:  %s\n", t.Schedule)
	fmt.Fprintf(w, "  Color:     %s\n", marshal.EncodeColor(t.Color))
	if t.Emoji != "" {
		fmt.Fprintf(w, "  Emoji:     %s\n", t.Emoji)
	}
	fmt.Fprintf(w, "  Pinned:    %t\n", t.IsPinned)
	fmt.Fprintf(w, "  Completed: %d day(s)\n", total)
	status := "not done"
	if doneToday {
		status = doneStyle.Render("done")
	}
	fmt.Fprintf(w, "  Today:     %s\n", status)
	return nil
}

// scheduleFlags turns --days/--irregular into a schedule
func scheduleFlags(days string, irregular bool) (models.WeekDaySet, error) {
	if irregular {
		return models.IrregularSchedule(), nil
	}
	if days == "" {
		return 0, fmt.Errorf("either --days or --irregular is required")
	}
	return parseDays(days)
}
