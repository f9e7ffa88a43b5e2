package spatial

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
)

// H3 resolution bounds. The library supports 0..15; coarsening never goes
// below MinHexResolution.
const (
	MinHexResolution = 5
	MaxHexResolution = 15
)

// HexIndexer assigns H3 hexagon cells at a fixed resolution.
type HexIndexer struct {
	res int
}

// NewHexIndexer returns a hexagon indexer at the given H3 resolution.
func NewHexIndexer(res int) (*HexIndexer, error) {
	if res < 0 || res > MaxHexResolution {
		return nil, fmt.Errorf("h3 resolution %d out of range 0..%d", res, MaxHexResolution)
	}
	return &HexIndexer{res: res}, nil
}

// CellFor returns the H3 cell index as its canonical hex string.
func (h *HexIndexer) CellFor(lat, lon float64) string {
	return h3.LatLngToCell(h3.NewLatLng(lat, lon), h.res).String()
}

// Grid implements CellIndexer.
func (h *HexIndexer) Grid() domain.GridType { return domain.GridH3 }

// Resolution implements CellIndexer.
func (h *HexIndexer) Resolution() any { return h.res }

// Coarsen steps the resolution down by one, stopping at MinHexResolution.
// A starting resolution at or below the floor is already exhausted.
func (h *HexIndexer) Coarsen() (CellIndexer, bool) {
	if h.res <= MinHexResolution {
		return h, false
	}
	return &HexIndexer{res: h.res - 1}, true
}

// Probe checks that the H3 binding yields a valid cell for a reference
// point. A failure downgrades the run to the grid strategy; it does not
// abort it.
func (h *HexIndexer) Probe() error {
	cell := h3.LatLngToCell(h3.NewLatLng(39.0, -98.0), h.res)
	if !cell.IsValid() {
		return fmt.Errorf("h3 binding returned invalid cell for reference point at resolution %d", h.res)
	}
	return nil
}
