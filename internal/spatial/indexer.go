// Package spatial maps coordinates to grid cells for aggregation. Two
// strategies exist: H3 hexagons (preferred) and a plain decimal-degree grid
// (fallback). Both support stepwise coarsening so the pipeline can trade
// resolution for artifact size.
package spatial

import "github.com/couchcryptid/incident-heatmap-etl/internal/domain"

// CellIndexer assigns a cell id to a coordinate at the indexer's current
// resolution. Indexers are immutable; Coarsen returns a new one.
type CellIndexer interface {
	// CellFor returns the id of the cell containing the point.
	CellFor(lat, lon float64) string

	// Grid identifies the strategy for artifact meta.
	Grid() domain.GridType

	// Resolution is the value recorded in artifact meta: an int resolution
	// for hexagons, a float64 bin size in degrees for the grid.
	Resolution() any

	// Coarsen returns an indexer one step coarser. The second return is
	// false once the strategy's coarsening bound is reached.
	Coarsen() (CellIndexer, bool)
}
