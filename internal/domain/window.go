package domain

// Window is an inclusive span of calendar years.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether year falls inside the window.
func (w Window) Contains(year int) bool { return year >= w.Start && year <= w.End }

// Pair returns the window as the [start, end] array used by features.
func (w Window) Pair() [2]int { return [2]int{w.Start, w.End} }

// BuildWindows partitions [minYear, maxYear] into contiguous non-overlapping
// spans. Every window covers yearsPer years except the last, which covers
// whatever remains; a single observed year yields a single one-year window.
func BuildWindows(minYear, maxYear, yearsPer int) ([]Window, error) {
	if minYear > maxYear {
		return nil, &InvalidRangeError{MinYear: minYear, MaxYear: maxYear}
	}
	if yearsPer < 1 {
		yearsPer = 1
	}
	var windows []Window
	for start := minYear; start <= maxYear; {
		end := start + yearsPer - 1
		if end > maxYear {
			end = maxYear
		}
		windows = append(windows, Window{Start: start, End: end})
		start = end + 1
	}
	return windows, nil
}
