package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
	"github.com/couchcryptid/incident-heatmap-etl/internal/observability"
	"github.com/couchcryptid/incident-heatmap-etl/internal/spatial"
)

// maxAttempts bounds the coarsening loop. The deepest legal walk, H3
// resolution 15 down to the floor of 5, takes 11 passes.
const maxAttempts = 16

// Outcome is an accepted aggregation: the artifact, its serialized bytes,
// and how the controller got there. Exhausted marks an artifact accepted
// over budget because no coarser configuration was left.
type Outcome struct {
	Artifact  domain.Artifact
	Encoded   []byte
	Indexer   spatial.CellIndexer
	Attempts  int
	Exhausted bool
}

// Controller holds aggregation output to a byte budget. Each pass
// aggregates at the current resolution, serializes, and measures; oversized
// results coarsen the indexer and try again until the artifact fits or the
// strategy is out of coarser configurations.
type Controller struct {
	maxBytes int64
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewController creates a Controller enforcing maxBytes.
func NewController(maxBytes int64, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{maxBytes: maxBytes, logger: logger, metrics: metrics}
}

// Run drives aggregate-measure-decide passes to an accepted Outcome. The
// only errors are context cancellation and serialization failure; running
// out of resolution is a warning, not an error.
func (c *Controller) Run(ctx context.Context, records []domain.Record, windows []domain.Window, indexer spatial.CellIndexer) (Outcome, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("aggregation cancelled: %w", err)
		}

		start := time.Now()
		features := Aggregate(records, windows, indexer)
		artifact := domain.Artifact{
			Meta: domain.Meta{
				Grid:       indexer.Grid(),
				Resolution: indexer.Resolution(),
				Windows:    windows,
			},
			Features: features,
		}
		encoded, err := json.Marshal(artifact)
		if err != nil {
			return Outcome{}, fmt.Errorf("encode artifact: %w", err)
		}

		c.metrics.AggregationAttempts.Inc()
		c.metrics.AttemptDuration.Observe(time.Since(start).Seconds())

		size := int64(len(encoded))
		if size <= c.maxBytes {
			c.logger.Info("artifact within budget",
				"bytes", size,
				"budget", c.maxBytes,
				"attempt", attempt,
				"grid", indexer.Grid(),
				"resolution", indexer.Resolution(),
				"features", len(features),
			)
			return Outcome{Artifact: artifact, Encoded: encoded, Indexer: indexer, Attempts: attempt}, nil
		}

		coarser, ok := indexer.Coarsen()
		if !ok || attempt >= maxAttempts {
			c.logger.Warn("resolution exhausted, accepting oversized artifact",
				"bytes", size,
				"budget", c.maxBytes,
				"attempt", attempt,
				"grid", indexer.Grid(),
				"resolution", indexer.Resolution(),
				"features", len(features),
			)
			c.metrics.BudgetExhausted.Inc()
			return Outcome{Artifact: artifact, Encoded: encoded, Indexer: indexer, Attempts: attempt, Exhausted: true}, nil
		}

		c.logger.Info("artifact over budget, coarsening",
			"bytes", size,
			"budget", c.maxBytes,
			"attempt", attempt,
			"resolution", indexer.Resolution(),
			"next_resolution", coarser.Resolution(),
		)
		indexer = coarser
	}
}
