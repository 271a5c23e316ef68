package festival

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of selected calendar dates.
const DateLayout = "2006-01-02"

// CityMatch controls how a queried city is compared with festival locations.
type CityMatch int

const (
	// MatchExact compares the stripped location and city byte for byte.
	MatchExact CityMatch = iota
	// MatchFold compares them case-insensitively.
	MatchFold
)

// ParseCityMatch parses "exact" or "fold".
func ParseCityMatch(s string) (CityMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "fold", "insensitive", "case-insensitive":
		return MatchFold, nil
	default:
		return MatchExact, fmt.Errorf("invalid city match mode %q (must be 'exact' or 'fold')", s)
	}
}

// String returns the mode name.
func (m CityMatch) String() string {
	if m == MatchFold {
		return "fold"
	}
	return "exact"
}

// Set parses s into m so CityMatch can be bound to a command-line flag.
func (m *CityMatch) Set(s string) error {
	parsed, err := ParseCityMatch(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type names the flag value type.
func (m *CityMatch) Type() string {
	return "mode"
}

func (m CityMatch) equal(location, city string) bool {
	if m == MatchFold {
		return strings.EqualFold(location, city)
	}
	return location == city
}

// Matcher finds festivals in a Table. A Matcher is read-only after
// construction and safe for concurrent use.
type Matcher struct {
	table Table
	match CityMatch
	loc   *time.Location
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithCityMatch sets the city comparison mode. The default is MatchExact.
func WithCityMatch(mode CityMatch) Option {
	return func(m *Matcher) {
		m.match = mode
	}
}

// WithLocation sets the time zone dates are interpreted in. The default is
// the local zone.
func WithLocation(loc *time.Location) Option {
	return func(m *Matcher) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// NewMatcher creates a Matcher over table.
func NewMatcher(table Table, opts ...Option) *Matcher {
	m := &Matcher{
		table: table,
		match: MatchExact,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ForCityAndDates returns the festivals in city active on any of dates.
//
// Dates are YYYY-MM-DD strings taken in the order given; a date that does not
// parse, or whose month has no table entry, contributes nothing. Results are
// unique by festival name, in first-encountered order. The result is never
// nil.
func (m *Matcher) ForCityAndDates(city string, dates []string) []Festival {
	matches := []Festival{}
	if len(dates) == 0 {
		return matches
	}

	seen := make(map[string]bool)
	for _, raw := range dates {
		day, ok := m.parseDate(raw)
		if !ok {
			continue
		}

		for _, f := range m.table[MonthKey(day.Month())] {
			if !m.match.equal(f.City(), city) || !f.Covers(day.Day()) {
				continue
			}
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			matches = append(matches, f)
		}
	}

	return matches
}

// ForSelection returns the festivals in city active on any day of sel.
func (m *Matcher) ForSelection(city string, sel Selection) []Festival {
	return m.ForCityAndDates(city, sel.Days())
}

// parseDate parses raw at local noon so zone offsets cannot shift the day.
func (m *Matcher) parseDate(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), m.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.Add(12 * time.Hour), true
}

// ForCityAndDates matches against the built-in festival table using exact
// city comparison.
func ForCityAndDates(city string, dates []string) []Festival {
	table, err := DefaultTable()
	if err != nil {
		return []Festival{}
	}
	return NewMatcher(table).ForCityAndDates(city, dates)
}
