package spatial

import (
	"fmt"
	"math"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
)

// MaxBinSize caps grid coarsening at 0.2 degrees per bin.
const MaxBinSize = 0.2

// GridIndexer assigns square decimal-degree bins. It is the fallback when
// hexagon indexing is unavailable and the strategy behind -grid bin.
type GridIndexer struct {
	size float64
}

// NewGridIndexer returns a grid indexer with the given bin size in degrees.
func NewGridIndexer(size float64) (*GridIndexer, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("bin size %v must be a positive number of degrees", size)
	}
	return &GridIndexer{size: size}, nil
}

// CellFor snaps the point to its bin's southwest corner. Both axes floor, so
// negative coordinates snap away from zero: lon -74.006 with 0.1-degree bins
// lands in -74.1, not -74.0.
func (g *GridIndexer) CellFor(lat, lon float64) string {
	binLat := math.Floor(lat/g.size) * g.size
	binLon := math.Floor(lon/g.size) * g.size
	return fmt.Sprintf("%.1f_%.1f", binLat, binLon)
}

// Grid implements CellIndexer.
func (g *GridIndexer) Grid() domain.GridType { return domain.GridBin }

// Resolution implements CellIndexer.
func (g *GridIndexer) Resolution() any { return g.size }

// Coarsen doubles the bin size, clamped to MaxBinSize. A size already at or
// above the cap is exhausted.
func (g *GridIndexer) Coarsen() (CellIndexer, bool) {
	if g.size >= MaxBinSize {
		return g, false
	}
	return &GridIndexer{size: math.Min(MaxBinSize, g.size * 2)}, true
}
