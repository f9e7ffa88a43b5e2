package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindows(t *testing.T) {
	tests := []struct {
		name     string
		minYear  int
		maxYear  int
		yearsPer int
		want     []Window
	}{
		{
			name:    "even span with short tail",
			minYear: 1995, maxYear: 2002, yearsPer: 3,
			want: []Window{{1995, 1997}, {1998, 2000}, {2001, 2002}},
		},
		{
			name:    "exact multiple",
			minYear: 2000, maxYear: 2005, yearsPer: 3,
			want: []Window{{2000, 2002}, {2003, 2005}},
		},
		{
			name:    "single year",
			minYear: 2005, maxYear: 2005, yearsPer: 3,
			want: []Window{{2005, 2005}},
		},
		{
			name:    "one year per window",
			minYear: 1999, maxYear: 2001, yearsPer: 1,
			want: []Window{{1999, 1999}, {2000, 2000}, {2001, 2001}},
		},
		{
			name:    "window longer than span",
			minYear: 1999, maxYear: 2001, yearsPer: 10,
			want: []Window{{1999, 2001}},
		},
		{
			name:    "zero length clamps to one",
			minYear: 1999, maxYear: 2000, yearsPer: 0,
			want: []Window{{1999, 1999}, {2000, 2000}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildWindows(tt.minYear, tt.maxYear, tt.yearsPer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Contiguity and coverage hold for any inputs, not just the table above.
func TestBuildWindowsProperties(t *testing.T) {
	for _, yearsPer := range []int{1, 2, 3, 5, 7} {
		got, err := BuildWindows(1980, 2026, yearsPer)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		assert.Equal(t, 1980, got[0].Start)
		assert.Equal(t, 2026, got[len(got)-1].End)
		for i, w := range got {
			assert.LessOrEqual(t, w.Start, w.End)
			if i > 0 {
				assert.Equal(t, got[i-1].End+1, w.Start, "windows must be contiguous")
			}
		}
	}
}

func TestBuildWindowsInvertedRange(t *testing.T) {
	_, err := BuildWindows(2005, 1995, 3)
	require.Error(t, err)

	var inv *InvalidRangeError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 2005, inv.MinYear)
	assert.Equal(t, 1995, inv.MaxYear)
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: 1998, End: 2000}
	assert.True(t, w.Contains(1998))
	assert.True(t, w.Contains(1999))
	assert.True(t, w.Contains(2000))
	assert.False(t, w.Contains(1997))
	assert.False(t, w.Contains(2001))
}
