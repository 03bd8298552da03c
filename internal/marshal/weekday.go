package marshal

import (
	"strconv"
	"strings"

	"github.com/julianstephens/tracker/internal/models"
)

const weekdaySeparator = ", "

// EncodeWeekdays joins the day indices of s, e.g. "0, 2"
func EncodeWeekdays(s models.WeekDaySet) string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, weekdaySeparator)
}

// DecodeWeekdays parses the output of EncodeWeekdays. Tokens that are not
// integers or not a valid day index are skipped.
func DecodeWeekdays(encoded string) models.WeekDaySet {
	var s models.WeekDaySet
	for _, token := range strings.Split(encoded, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		s = s.Add(models.WeekDay(idx))
	}
	return s
}
