package spatial

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
)

func TestGridCellFor(t *testing.T) {
	tests := []struct {
		name string
		size float64
		lat  float64
		lon  float64
		want string
	}{
		{"manhattan", 0.1, 40.7128, -74.0060, "40.7_-74.1"},
		{"los angeles", 0.1, 34.0522, -118.2437, "34.0_-118.3"},
		{"houston", 0.1, 29.7604, -95.3698, "29.7_-95.4"},
		{"origin", 0.1, 0.04, 0.04, "0.0_0.0"},
		{"coarse bins", 0.2, 40.7128, -74.0060, "40.6_-74.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGridIndexer(tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.CellFor(tt.lat, tt.lon))
		})
	}
}

// Negative coordinates floor away from zero; truncation toward zero would
// put western-hemisphere points one bin east of where they belong.
func TestGridCellForFloorsNegatives(t *testing.T) {
	g, err := NewGridIndexer(0.1)
	require.NoError(t, err)

	assert.Equal(t, "40.7_-74.1", g.CellFor(40.7128, -74.0060))
	assert.Equal(t, "-34.1_18.4", g.CellFor(-34.0522, 18.4231))
}

func TestGridSamePointSameCell(t *testing.T) {
	g, err := NewGridIndexer(0.1)
	require.NoError(t, err)

	a := g.CellFor(41.8781, -87.6298)
	b := g.CellFor(41.8781, -87.6298)
	assert.Equal(t, a, b)
}

func TestGridMetadata(t *testing.T) {
	g, err := NewGridIndexer(0.1)
	require.NoError(t, err)

	assert.Equal(t, domain.GridBin, g.Grid())
	assert.Equal(t, 0.1, g.Resolution())
}

func TestNewGridIndexerRejectsBadSizes(t *testing.T) {
	for _, size := range []float64{0, -0.1} {
		_, err := NewGridIndexer(size)
		assert.Error(t, err, "size %v", size)
	}
}

func TestGridCoarsen(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		wantSize float64
		wantOK   bool
	}{
		{"default doubles", 0.1, 0.2, true},
		{"odd size clamps to cap", 0.15, 0.2, true},
		{"at cap is exhausted", 0.2, 0.2, false},
		{"above cap is exhausted", 0.25, 0.25, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGridIndexer(tt.size)
			require.NoError(t, err)

			next, ok := g.Coarsen()
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantSize, next.Resolution().(float64), 1e-12)
			assert.Equal(t, domain.GridBin, next.Grid())
		})
	}
}

// Doubling the bin size can only merge bins, never split them: the distinct
// cell count over any point set must not increase.
func TestGridCoarsenNeverIncreasesCells(t *testing.T) {
	g, err := NewGridIndexer(0.1)
	require.NoError(t, err)
	coarse, ok := g.Coarsen()
	require.True(t, ok)

	var points [][2]float64
	for i := 0; i < 20; i++ {
		for j := 0; j < 20; j++ {
			points = append(points, [2]float64{24.03 + float64(i)*0.07, -125.01 + float64(j)*0.13})
		}
	}

	fine := map[string]struct{}{}
	merged := map[string]struct{}{}
	for _, p := range points {
		fine[g.CellFor(p[0], p[1])] = struct{}{}
		merged[coarse.CellFor(p[0], p[1])] = struct{}{}
	}
	assert.LessOrEqual(t, len(merged), len(fine),
		fmt.Sprintf("coarse grid produced %d cells from %d", len(merged), len(fine)))
}
