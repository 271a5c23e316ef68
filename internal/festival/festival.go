// Package festival matches city festivals against selected travel dates.
package festival

import (
	"strings"
	"time"

	"github.com/jmylchreest/skytint/internal/colour"
)

// Festival is a dated, located promotional entry used to theme cards for a
// city. A festival spanning a month boundary is stored as two records.
type Festival struct {
	Name     string             `json:"name" yaml:"name" validate:"required"`
	Location string             `json:"location" yaml:"location" validate:"required"`
	StartDay int                `json:"startDay" yaml:"startDay" validate:"min=1,max=31"`
	EndDay   int                `json:"endDay" yaml:"endDay" validate:"min=1,max=31,gtefield=StartDay"`
	Color    colour.ColourValue `json:"color" yaml:"color"`
	Type     string             `json:"type" yaml:"type"`
	Theme    string             `json:"theme,omitempty" yaml:"theme,omitempty"`
	Image    string             `json:"image,omitempty" yaml:"image,omitempty"`
}

// City returns the festival location with decorative symbols removed.
func (f Festival) City() string {
	return StripDecorations(f.Location)
}

// Covers reports whether day falls inside the festival's inclusive day range.
func (f Festival) Covers(day int) bool {
	return day >= f.StartDay && day <= f.EndDay
}

// OnColour returns the readable text colour for a card painted in the
// festival colour.
func (f Festival) OnColour() string {
	return colour.ReadableOn(f.Color)
}

// Table groups festivals by lowercase English month name.
type Table map[string][]Festival

// MonthKey returns the table key for m, e.g. "july".
func MonthKey(m time.Month) string {
	return strings.ToLower(m.String())
}

// Months returns the keys present in the table in calendar order.
func (t Table) Months() []string {
	months := make([]string, 0, len(t))
	for m := time.January; m <= time.December; m++ {
		if _, ok := t[MonthKey(m)]; ok {
			months = append(months, MonthKey(m))
		}
	}
	return months
}

// Len returns the total number of records in the table.
func (t Table) Len() int {
	n := 0
	for _, list := range t {
		n += len(list)
	}
	return n
}

// Cities returns the distinct stripped locations in calendar order of first
// appearance.
func (t Table) Cities() []string {
	seen := make(map[string]bool)
	var cities []string
	for _, month := range t.Months() {
		for _, f := range t[month] {
			city := f.City()
			if !seen[city] {
				seen[city] = true
				cities = append(cities, city)
			}
		}
	}
	return cities
}
