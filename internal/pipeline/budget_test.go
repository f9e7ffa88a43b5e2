package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
	"github.com/couchcryptid/incident-heatmap-etl/internal/observability"
	"github.com/couchcryptid/incident-heatmap-etl/internal/spatial"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeIndexer spreads records over a fixed number of cells. Coarsen halves
// the cell count, exhausting at one cell, so tests can steer how fast the
// artifact shrinks.
type fakeIndexer struct {
	cells int
}

func (f *fakeIndexer) CellFor(lat, _ float64) string {
	return fmt.Sprintf("cell-%03d", int(lat)%f.cells)
}

func (f *fakeIndexer) Grid() domain.GridType { return domain.GridBin }

func (f *fakeIndexer) Resolution() any { return f.cells }

func (f *fakeIndexer) Coarsen() (spatial.CellIndexer, bool) {
	if f.cells <= 1 {
		return f, false
	}
	return &fakeIndexer{cells: f.cells / 2}, true
}

func spreadRecords(n int) []domain.Record {
	records := make([]domain.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, recordAt(float64(i), -100, 2000))
	}
	return records
}

func TestControllerAcceptsWithinBudget(t *testing.T) {
	records := spreadRecords(10)
	windows := []domain.Window{{Start: 2000, End: 2000}}
	c := NewController(1<<20, discardLogger(), observability.NewMetricsForTesting())

	outcome, err := c.Run(context.Background(), records, windows, &fakeIndexer{cells: 64})
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Attempts)
	assert.False(t, outcome.Exhausted)
	assert.Equal(t, 64, outcome.Indexer.Resolution())
	assert.Len(t, outcome.Artifact.Features, 10)

	want, err := json.Marshal(outcome.Artifact)
	require.NoError(t, err)
	assert.Equal(t, want, outcome.Encoded)
}

func TestControllerCoarsensUntilFit(t *testing.T) {
	records := spreadRecords(64)
	windows := []domain.Window{{Start: 2000, End: 2000}}

	// Budget sized so the initial pass cannot fit but a coarser one can.
	coarse, err := json.Marshal(domain.Artifact{
		Meta:     domain.Meta{Grid: domain.GridBin, Resolution: 8, Windows: windows},
		Features: Aggregate(records, windows, &fakeIndexer{cells: 8}),
	})
	require.NoError(t, err)
	budget := int64(len(coarse))

	c := NewController(budget, discardLogger(), observability.NewMetricsForTesting())
	outcome, err := c.Run(context.Background(), records, windows, &fakeIndexer{cells: 64})
	require.NoError(t, err)

	assert.False(t, outcome.Exhausted)
	assert.Greater(t, outcome.Attempts, 1)
	assert.LessOrEqual(t, int64(len(outcome.Encoded)), budget)
	assert.LessOrEqual(t, outcome.Indexer.Resolution().(int), 8)
}

func TestControllerAcceptsOversizedAtFloor(t *testing.T) {
	records := spreadRecords(64)
	windows := []domain.Window{{Start: 2000, End: 2000}}
	c := NewController(10, discardLogger(), observability.NewMetricsForTesting())

	outcome, err := c.Run(context.Background(), records, windows, &fakeIndexer{cells: 64})
	require.NoError(t, err)

	assert.True(t, outcome.Exhausted)
	assert.Greater(t, int64(len(outcome.Encoded)), int64(10))
	assert.Equal(t, 1, outcome.Indexer.Resolution())
	// 64 -> 32 -> 16 -> 8 -> 4 -> 2 -> 1, one attempt per level.
	assert.Equal(t, 7, outcome.Attempts)
	require.Len(t, outcome.Artifact.Features, 1)
	assert.Equal(t, 64, outcome.Artifact.Features[0].Count)
}

func TestControllerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewController(1<<20, discardLogger(), observability.NewMetricsForTesting())
	_, err := c.Run(ctx, spreadRecords(4), []domain.Window{{Start: 2000, End: 2000}}, &fakeIndexer{cells: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerEmptyFeatureList(t *testing.T) {
	windows := []domain.Window{{Start: 2000, End: 2000}}
	c := NewController(1<<20, discardLogger(), observability.NewMetricsForTesting())

	outcome, err := c.Run(context.Background(), nil, windows, &fakeIndexer{cells: 4})
	require.NoError(t, err)
	assert.Contains(t, string(outcome.Encoded), `"features":[]`)
}

// The same input must serialize to the same bytes run over run, regardless
// of map iteration or goroutine scheduling.
func TestControllerDeterministicBytes(t *testing.T) {
	var records []domain.Record
	for i := 0; i < 200; i++ {
		records = append(records, recordAt(
			25.0+float64(i%40)*0.61,
			-120.0+float64(i%23)*1.7,
			1995+i%8,
		))
	}
	windows, err := domain.BuildWindows(1995, 2002, 3)
	require.NoError(t, err)

	g, err := spatial.NewGridIndexer(0.1)
	require.NoError(t, err)

	c := NewController(1<<20, discardLogger(), observability.NewMetricsForTesting())
	first, err := c.Run(context.Background(), records, windows, g)
	require.NoError(t, err)
	second, err := c.Run(context.Background(), records, windows, g)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first.Artifact, second.Artifact))
	assert.True(t, bytes.Equal(first.Encoded, second.Encoded))
}
