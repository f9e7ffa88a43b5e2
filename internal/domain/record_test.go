package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCoords(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"manhattan", 40.7128, -74.0060, true},
		{"poles and antimeridian", 90, 180, true},
		{"negative bounds", -90, -180, true},
		{"lat too high", 90.1, 0, false},
		{"lat too low", -91, 0, false},
		{"lon too high", 0, 180.5, false},
		{"lon too low", 0, -181, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoords(tt.lat, tt.lon))
		})
	}
}

func TestYearRange(t *testing.T) {
	records := []Record{
		{When: time.Date(1998, 7, 1, 0, 0, 0, 0, time.UTC)},
		{When: time.Date(1995, 7, 1, 0, 0, 0, 0, time.UTC)},
		{When: time.Date(2002, 3, 9, 0, 0, 0, 0, time.UTC)},
	}
	minYear, maxYear, err := YearRange(records)
	require.NoError(t, err)
	assert.Equal(t, 1995, minYear)
	assert.Equal(t, 2002, maxYear)
}

func TestYearRangeEmpty(t *testing.T) {
	_, _, err := YearRange(nil)
	require.Error(t, err)

	var inv *InvalidRangeError
	assert.ErrorAs(t, err, &inv)
}

func TestRoundCoord(t *testing.T) {
	assert.InDelta(t, 40.712804, RoundCoord(40.71280449), 1e-9)
	assert.InDelta(t, -74.006123, RoundCoord(-74.0061234), 1e-9)
	assert.InDelta(t, 12.345679, RoundCoord(12.3456789), 1e-9)
	assert.InDelta(t, 0, RoundCoord(0), 1e-9)
}

// Resolution keeps its native JSON type: whole numbers for h3, decimals for bin.
func TestMetaResolutionJSON(t *testing.T) {
	h3Meta, err := json.Marshal(Meta{Grid: GridH3, Resolution: 6, Windows: []Window{{1995, 1997}}})
	require.NoError(t, err)
	assert.Contains(t, string(h3Meta), `"resolution":6,`)

	binMeta, err := json.Marshal(Meta{Grid: GridBin, Resolution: 0.1, Windows: []Window{{1995, 1997}}})
	require.NoError(t, err)
	assert.Contains(t, string(binMeta), `"resolution":0.1,`)
}

func TestFeatureCellID(t *testing.T) {
	assert.Equal(t, "862a1072fffffff", Feature{Cell: "862a1072fffffff"}.CellID())
	assert.Equal(t, "40.7_-74.1", Feature{BinID: "40.7_-74.1"}.CellID())
}
