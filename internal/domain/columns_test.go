package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   Columns
	}{
		{
			name:   "canonical names",
			header: []string{"id", "lat", "lon", "date"},
			want:   Columns{Lat: 1, Lon: 2, Date: 3},
		},
		{
			name:   "capitalized variants",
			header: []string{"Latitude", "Longitude", "Date", "state"},
			want:   Columns{Lat: 0, Lon: 1, Date: 2},
		},
		{
			name:   "xy fallback",
			header: []string{"y", "x", "incident_date"},
			want:   Columns{Lat: 0, Lon: 1, Date: 2},
		},
		{
			name:   "alias priority beats header position",
			header: []string{"Latitude", "Longitude", "lat", "lon", "date"},
			want:   Columns{Lat: 2, Lon: 3, Date: 4},
		},
		{
			name:   "year column flags year-only dates",
			header: []string{"year", "Latitude", "Longitude", "state"},
			want:   Columns{Lat: 1, Lon: 2, Date: 0, YearOnly: true},
		},
		{
			name:   "date column beats year when both exist",
			header: []string{"year", "lat", "lon", "date"},
			want:   Columns{Lat: 1, Lon: 2, Date: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveColumns(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumnsMissing(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		field  string
	}{
		{"no latitude", []string{"lon", "date"}, "latitude"},
		{"no longitude", []string{"lat", "date"}, "longitude"},
		{"no date", []string{"lat", "lon", "state"}, "date"},
		{"case mismatch is a miss", []string{"Lat", "Lon", "date"}, "latitude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveColumns(tt.header)
			require.Error(t, err)

			var missing *MissingColumnError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
			assert.NotEmpty(t, missing.Tried)
			assert.Contains(t, err.Error(), tt.field)
			for _, alias := range missing.Tried {
				assert.Contains(t, err.Error(), alias)
			}
		})
	}
}

func TestMissingColumnErrorMatchable(t *testing.T) {
	_, err := ResolveColumns([]string{"nothing", "useful"})
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*MissingColumnError)))
}
