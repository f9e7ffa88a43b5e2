package domain

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the formats observed across upstream exports, most
// common first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate parses a raw date value into a UTC timestamp. yearOnly marks
// values from a bare-year column; those anchor at July 1 of their year. The
// second return is false when the value cannot be parsed, which excludes the
// row rather than failing the run.
func NormalizeDate(raw string, yearOnly bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if yearOnly {
		return yearAnchor(raw)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	// Mixed exports sometimes hold bare years inside a date column.
	return yearAnchor(raw)
}

// yearAnchor maps a bare four-digit year to July 1 of that year.
func yearAnchor(raw string) (time.Time, bool) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1000 || year > 9999 {
		return time.Time{}, false
	}
	return time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC), true
}
