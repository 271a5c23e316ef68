package festival

import (
	"fmt"
	"time"
)

// MaxRangeDays bounds the number of days a Selection range may expand to.
const MaxRangeDays = 366

// Selection is one or two chosen calendar dates. Two dates with the first on
// or before the second form an inclusive range; otherwise each date stands
// alone.
type Selection struct {
	First  time.Time
	Second time.Time // zero for a single day
}

// ParseSelection parses one or two YYYY-MM-DD dates.
func ParseSelection(dates []string) (Selection, error) {
	if len(dates) == 0 || len(dates) > 2 {
		return Selection{}, fmt.Errorf("selection needs 1 or 2 dates, got %d", len(dates))
	}

	first, err := time.Parse(DateLayout, dates[0])
	if err != nil {
		return Selection{}, fmt.Errorf("invalid date %q: %w", dates[0], err)
	}
	sel := Selection{First: first}

	if len(dates) == 2 {
		second, err := time.Parse(DateLayout, dates[1])
		if err != nil {
			return Selection{}, fmt.Errorf("invalid date %q: %w", dates[1], err)
		}
		sel.Second = second
	}

	if sel.IsRange() && sel.Second.Sub(sel.First) >= MaxRangeDays*24*time.Hour {
		return Selection{}, fmt.Errorf("date range %s..%s exceeds %d days",
			dates[0], dates[1], MaxRangeDays)
	}

	return sel, nil
}

// IsRange reports whether the selection is an inclusive range.
func (s Selection) IsRange() bool {
	return !s.Second.IsZero() && !s.Second.Before(s.First)
}

// Days returns the selected days as YYYY-MM-DD strings. A range expands to
// every day from First to Second inclusive.
func (s Selection) Days() []string {
	if s.First.IsZero() {
		return nil
	}

	if !s.IsRange() {
		days := []string{s.First.Format(DateLayout)}
		if !s.Second.IsZero() {
			days = append(days, s.Second.Format(DateLayout))
		}
		return days
	}

	var days []string
	for d := s.First; !d.After(s.Second); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}
