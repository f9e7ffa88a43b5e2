package domain

import "time"

// Record is one incident row after column resolution and normalization.
// Only rows that passed the validity filter become Records.
type Record struct {
	Lat  float64
	Lon  float64
	When time.Time // normalized event time; bare years anchor at July 1
}

// Year returns the calendar year the record falls in.
func (r Record) Year() int { return r.When.Year() }

// ValidCoords reports whether the pair is a usable WGS-84 coordinate.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// YearRange returns the minimum and maximum event year across records.
// An empty slice yields an InvalidRangeError: with no parseable rows there
// is no range to window over.
func YearRange(records []Record) (minYear, maxYear int, err error) {
	if len(records) == 0 {
		return 0, 0, &InvalidRangeError{}
	}
	minYear, maxYear = records[0].Year(), records[0].Year()
	for _, r := range records[1:] {
		y := r.Year()
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	return minYear, maxYear, nil
}
