// Package timeutil provides SkyBlock calendar utilities for contest dates.
// Contests are keyed by in-game dates, not real dates, so ordering and
// cutoff comparisons use a compact ordinal of the form year*10000+month*100+day.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
)

// SkyBlock calendar shape: 12 months of 31 days each.
const (
	MonthsPerYear = 12
	DaysPerMonth  = 31
)

// ContestDate is a sortable encoding of an in-game date. Later dates always
// compare greater, which makes it safe for cutoff comparisons and ordering.
type ContestDate int

// NewContestDate builds a ContestDate from in-game year, month, and day.
func NewContestDate(year, month, day int) ContestDate {
	return ContestDate(year*10_000 + month*100 + day)
}

// Year returns the in-game year component.
func (d ContestDate) Year() int { return int(d) / 10_000 }

// Month returns the in-game month component (1-12).
func (d ContestDate) Month() int { return int(d) % 10_000 / 100 }

// Day returns the in-game day component (1-31).
func (d ContestDate) Day() int { return int(d) % 100 }

// IsValid reports whether the components form a real SkyBlock date.
func (d ContestDate) IsValid() bool {
	return d.Year() > 0 &&
		d.Month() >= 1 && d.Month() <= MonthsPerYear &&
		d.Day() >= 1 && d.Day() <= DaysPerMonth
}

// Before reports whether d falls before other.
func (d ContestDate) Before(other ContestDate) bool { return d < other }

// String renders the date in the "Month Day, Year" form used by displays.
func (d ContestDate) String() string {
	return fmt.Sprintf("%s %d, Year %d", MonthName(d.Month()), d.Day(), d.Year())
}

// monthNames are the SkyBlock month names in calendar order.
var monthNames = []string{
	"Early Spring", "Spring", "Late Spring",
	"Early Summer", "Summer", "Late Summer",
	"Early Autumn", "Autumn", "Late Autumn",
	"Early Winter", "Winter", "Late Winter",
}

// MonthName returns the SkyBlock name of a month (1-12).
func MonthName(month int) string {
	if month < 1 || month > MonthsPerYear {
		return "Unknown"
	}
	return monthNames[month-1]
}
