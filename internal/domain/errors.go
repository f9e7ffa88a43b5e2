package domain

import (
	"fmt"
	"strings"
)

// MissingColumnError reports that none of the accepted aliases for a logical
// column are present in the CSV header. It is fatal: without the column the
// input cannot be interpreted at all.
type MissingColumnError struct {
	Field string   // logical name: "latitude", "longitude", "date"
	Tried []string // aliases probed, in priority order
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("could not find %s column, expected one of: %s",
		e.Field, strings.Join(e.Tried, ", "))
}

// InvalidRangeError reports that no usable year range exists, either because
// every row failed the validity filter or because the derived bounds are
// inverted.
type InvalidRangeError struct {
	MinYear int
	MaxYear int
}

func (e *InvalidRangeError) Error() string {
	if e.MinYear == 0 && e.MaxYear == 0 {
		return "no valid records: every row failed date or coordinate parsing"
	}
	return fmt.Sprintf("invalid year range %d..%d", e.MinYear, e.MaxYear)
}
