package domain

import (
	"math"
	"time"
)

// GridType selects the spatial indexing strategy recorded in artifact meta.
type GridType string

const (
	GridH3  GridType = "h3"
	GridBin GridType = "bin"
)

// Feature is one aggregated cell within one window. Exactly one of Cell or
// BinID is set, matching the grid type in meta.
type Feature struct {
	Window [2]int  `json:"w"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Count  int     `json:"n"`
	Cell   string  `json:"c,omitempty"`
	BinID  string  `json:"bin_id,omitempty"`
}

// CellID returns whichever cell identifier the feature carries.
func (f Feature) CellID() string {
	if f.Cell != "" {
		return f.Cell
	}
	return f.BinID
}

// Meta describes how the artifact was produced. Resolution is an H3
// resolution (int) for the h3 grid and a bin size in degrees (float64) for
// the bin grid; the JSON type follows the Go type.
type Meta struct {
	Grid       GridType `json:"grid"`
	Resolution any      `json:"resolution"`
	Windows    []Window `json:"windows"`
}

// Artifact is the complete output document: meta plus the flat feature list.
type Artifact struct {
	Meta     Meta      `json:"meta"`
	Features []Feature `json:"features"`
}

// RoundCoord rounds a coordinate to 6 decimal places, the precision written
// to the artifact.
func RoundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// RunSummary records the outcome of one aggregation run. It feeds the final
// log line and, when announcing is enabled, the completion event payload.
type RunSummary struct {
	RunID               string    `json:"run_id"`
	Input               string    `json:"input"`
	Output              string    `json:"output"`
	Grid                GridType  `json:"grid"`
	Resolution          any       `json:"resolution"`
	Windows             int       `json:"windows"`
	Features            int       `json:"features"`
	ArtifactBytes       int       `json:"artifact_bytes"`
	RowsLoaded          int       `json:"rows_loaded"`
	RowsExcluded        int       `json:"rows_excluded"`
	Attempts            int       `json:"attempts"`
	ResolutionExhausted bool      `json:"resolution_exhausted"`
	GeneratedAt         time.Time `json:"generated_at"`
}
