package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/marshal"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	pinnedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// swatch renders a colored dot for the tracker color
func swatch(t models.Tracker) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(marshal.EncodeColor(t.Color))).Render("●")
}

func trackerLine(t models.Tracker, done bool) string {
	check := "[ ]"
	if done {
		check = doneStyle.Render("[x]")
	}
	name := t.Name
	if t.Emoji != "" {
		name = t.Emoji + " " + name
	}
	return fmt.Sprintf("  %s %s %s  %s", check, swatch(t), name, mutedStyle.Render(t.Schedule.String()))
}

// renderTrackers prints every section of s, marking trackers found in completed
func renderTrackers(w io.Writer, s *store.TrackerStore, completed map[uuid.UUID]bool) {
	for section := 0; section < s.NumberOfSections(); section++ {
		title, _ := s.Header(section)
		style := headerStyle
		if title == constants.PinnedSectionTitle {
			style = pinnedStyle
		}
		if section > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, style.Render(title))
		for row := 0; row < s.NumberOfRows(section); row++ {
			t, _ := s.Object(models.IndexPath{Section: section, Row: row})
			fmt.Fprintln(w, trackerLine(t, completed[t.ID]))
		}
	}
}

func renderCategory(w io.Writer, c models.Category) {
	count := fmt.Sprintf("%d tracker", len(c.Trackers))
	if len(c.Trackers) != 1 {
		count += "s"
	}
	fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(c.Name), mutedStyle.Render(count))
	names := make([]string, len(c.Trackers))
	for i, t := range c.Trackers {
		names[i] = swatch(t) + " " + t.Name
	}
	if len(names) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(names, "  "))
	}
}
