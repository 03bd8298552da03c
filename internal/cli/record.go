package cli

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/models"
)

type RecordCmd struct {
	Mark   RecordMarkCmd   `cmd:"" help:"Mark a tracker complete for a day."`
	Unmark RecordUnmarkCmd `cmd:"" help:"Clear a tracker's completion for a day."`
	Toggle RecordToggleCmd `cmd:"" help:"Flip a tracker's completion for a day."`
	Stats  RecordStatsCmd  `cmd:"" help:"Show completion statistics."`
}

type RecordMarkCmd struct {
	Name string `arg:"" help:"Tracker name."`
	Date string `help:"Day in YYYY-MM-DD format (default: today)."`
}

func (c *RecordMarkCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(c.Date)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, _, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}
	if err := s.Records.Add(ctx.bg(), models.NewCompletionRecord(t.ID, date), t.ID); err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Marked %q for %s\n", t.Name, models.DayKey(date))
	return nil
}

type RecordUnmarkCmd struct {
	Name string `arg:"" help:"Tracker name."`
	Date string `help:"Day in YYYY-MM-DD format (default: today)."`
}

func (c *RecordUnmarkCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(c.Date)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, _, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}
	if err := s.Records.Delete(ctx.bg(), models.NewCompletionRecord(t.ID, date)); err != nil {
		return err
	}

	fmt.Fprintf(ctx.out(), "Unmarked %q for %s\n", t.Name, models.DayKey(date))
	return nil
}

type RecordToggleCmd struct {
	Name string `arg:"" help:"Tracker name."`
	Date string `help:"Day in YYYY-MM-DD format (default: today)."`
}

func (c *RecordToggleCmd) Run(ctx *Context) error {
	date, err := ctx.parseDate(c.Date)
	if err != nil {
		return err
	}

	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	t, _, err := s.findTracker(ctx.bg(), c.Name)
	if err != nil {
		return err
	}
	completed, err := s.Records.Toggle(ctx.bg(), t.ID, date)
	if err != nil {
		return err
	}

	if completed {
		fmt.Fprintf(ctx.out(), "Marked %q for %s\n", t.Name, models.DayKey(date))
	} else {
		fmt.Fprintf(ctx.out(), "Unmarked %q for %s\n", t.Name, models.DayKey(date))
	}
	return nil
}

type RecordStatsCmd struct{}

func (c *RecordStatsCmd) Run(ctx *Context) error {
	s, err := ctx.Open(ctx.bg())
	if err != nil {
		return err
	}
	defer s.Close()

	total, err := s.Records.FetchNumberOfAllRecords(ctx.bg())
	if err != nil {
		return err
	}

	w := ctx.out()
	fmt.Fprintf(w, "%s %d\n", headerStyle.Render("Trackers completed:"), total)
	if s.Records.IsEmpty() {
		return nil
	}

	fmt.Fprintln(w)
	for i := 0; i < s.Categories.NumberOfRows(); i++ {
		category, _ := s.Categories.Object(i)
		for _, t := range category.Trackers {
			n, err := s.Records.CompletedTrackers(ctx.bg(), t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s %-24s %4d\n", swatch(t), t.Name, n)
		}
	}
	return nil
}
