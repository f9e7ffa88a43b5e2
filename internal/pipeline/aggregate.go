package pipeline

import (
	"sort"
	"sync"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
	"github.com/couchcryptid/incident-heatmap-etl/internal/spatial"
)

// cellAccum accumulates one cell's records within one window.
type cellAccum struct {
	count  int
	sumLat float64
	sumLon float64
}

// Aggregate computes per-cell features for every window at the indexer's
// current resolution. Windows aggregate concurrently; the result keeps
// window order with each window's features sorted by cell id, so the same
// input always serializes to the same bytes.
func Aggregate(records []domain.Record, windows []domain.Window, indexer spatial.CellIndexer) []domain.Feature {
	buckets := bucketRecords(records, windows)

	results := make([][]domain.Feature, len(windows))
	var wg sync.WaitGroup
	for i := range windows {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = aggregateWindow(windows[i], buckets[i], indexer)
		}(i)
	}
	wg.Wait()

	features := make([]domain.Feature, 0)
	for _, fs := range results {
		features = append(features, fs...)
	}
	return features
}

// bucketRecords assigns each record to its window. Windows are sorted and
// contiguous, so a binary search on End finds the only candidate.
func bucketRecords(records []domain.Record, windows []domain.Window) [][]domain.Record {
	buckets := make([][]domain.Record, len(windows))
	for _, r := range records {
		y := r.Year()
		i := sort.Search(len(windows), func(i int) bool { return windows[i].End >= y })
		if i < len(windows) && windows[i].Contains(y) {
			buckets[i] = append(buckets[i], r)
		}
	}
	return buckets
}

// aggregateWindow groups one window's records by cell, producing a count and
// a mean-coordinate centroid per occupied cell. Windows without records
// produce no features.
func aggregateWindow(w domain.Window, records []domain.Record, indexer spatial.CellIndexer) []domain.Feature {
	if len(records) == 0 {
		return nil
	}

	accum := make(map[string]*cellAccum)
	for _, r := range records {
		id := indexer.CellFor(r.Lat, r.Lon)
		a := accum[id]
		if a == nil {
			a = &cellAccum{}
			accum[id] = a
		}
		a.count++
		a.sumLat += r.Lat
		a.sumLon += r.Lon
	}

	ids := make([]string, 0, len(accum))
	for id := range accum {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	binGrid := indexer.Grid() == domain.GridBin
	features := make([]domain.Feature, 0, len(ids))
	for _, id := range ids {
		a := accum[id]
		f := domain.Feature{
			Window: w.Pair(),
			Lat:    domain.RoundCoord(a.sumLat / float64(a.count)),
			Lon:    domain.RoundCoord(a.sumLon / float64(a.count)),
			Count:  a.count,
		}
		if binGrid {
			f.BinID = id
		} else {
			f.Cell = id
		}
		features = append(features, f)
	}
	return features
}
