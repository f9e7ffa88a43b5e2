package spatial

import (
	"github.com/paulmach/orb"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
)

// ConusBound covers the contiguous United States, edges inclusive. Alaska,
// Hawaii and the territories fall outside it.
var ConusBound = orb.Bound{
	Min: orb.Point{-125, 24},
	Max: orb.Point{-66, 50},
}

// InBound reports whether the record's coordinate lies inside b.
func InBound(b orb.Bound, r domain.Record) bool {
	return b.Contains(orb.Point{r.Lon, r.Lat})
}

// FilterBound returns the records inside b, preserving input order.
func FilterBound(b orb.Bound, records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if InBound(b, r) {
			out = append(out, r)
		}
	}
	return out
}
