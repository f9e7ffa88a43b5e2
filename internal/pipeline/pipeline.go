package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/incident-heatmap-etl/internal/config"
	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
	"github.com/couchcryptid/incident-heatmap-etl/internal/observability"
	"github.com/couchcryptid/incident-heatmap-etl/internal/spatial"
)

// Loader reads the incident table and applies the validity filter.
type Loader interface {
	Load(path string) (records []domain.Record, loaded int, excluded int, err error)
}

// Announcer publishes the run summary after a successful artifact write.
type Announcer interface {
	Announce(ctx context.Context, summary domain.RunSummary) error
}

// Pipeline orchestrates one CSV-to-artifact aggregation run.
type Pipeline struct {
	cfg       *config.Config
	loader    Loader
	announcer Announcer // nil when announcing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	summary   atomic.Pointer[domain.RunSummary]
}

// New creates a Pipeline with the given stages and observability. announcer
// may be nil.
func New(cfg *config.Config, loader Loader, announcer Announcer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		loader:    loader,
		announcer: announcer,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has written an accepted artifact,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no artifact produced yet")
	}
	return nil
}

// LastSummary returns the most recent completed run, or nil before the
// first artifact is written.
func (p *Pipeline) LastSummary() *domain.RunSummary {
	return p.summary.Load()
}

// Run executes one aggregation: load, window, filter, budget-controlled
// aggregation, artifact write, optional announcement. Fatal errors abort
// before anything is written; the destination never holds a partial artifact.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunSummary, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("run started", "csv", p.cfg.CSVPath, "out", p.cfg.OutPath, "grid", p.cfg.Grid)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	records, loaded, excluded, err := p.loader.Load(p.cfg.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	p.metrics.RowsLoaded.Add(float64(loaded))
	p.metrics.RowsExcluded.Add(float64(excluded))
	logger.Info("input loaded", "rows", loaded, "excluded", excluded, "valid", len(records))

	if p.cfg.MinYear > 0 {
		kept := records[:0:len(records)]
		for _, r := range records {
			if r.Year() >= p.cfg.MinYear {
				kept = append(kept, r)
			}
		}
		trimmed := len(records) - len(kept)
		if trimmed > 0 {
			p.metrics.RowsTrimmed.Add(float64(trimmed))
			logger.Info("trimmed records before min year", "min_year", p.cfg.MinYear, "trimmed", trimmed)
		}
		records = kept
	}

	minYear, maxYear, err := domain.YearRange(records)
	if err != nil {
		return nil, err
	}
	windows, err := domain.BuildWindows(minYear, maxYear, p.cfg.YearsPerWindow)
	if err != nil {
		return nil, err
	}
	logger.Info("windows derived", "min_year", minYear, "max_year", maxYear, "windows", len(windows))

	// The geographic filter runs after window derivation so it narrows the
	// map, not the timeline.
	if p.cfg.ConusOnly {
		before := len(records)
		records = spatial.FilterBound(spatial.ConusBound, records)
		logger.Info("conus filter applied", "kept", len(records), "dropped", before-len(records))
	}

	indexer, err := buildIndexer(p.cfg, logger)
	if err != nil {
		return nil, err
	}

	controller := NewController(p.cfg.MaxSizeBytes(), logger, p.metrics)
	outcome, err := controller.Run(ctx, records, windows, indexer)
	if err != nil {
		return nil, err
	}

	if err := WriteArtifact(p.cfg.OutPath, outcome.Encoded); err != nil {
		return nil, err
	}
	p.metrics.FeaturesEmitted.Set(float64(len(outcome.Artifact.Features)))
	p.metrics.ArtifactBytes.Set(float64(len(outcome.Encoded)))
	p.ready.Store(true)

	summary := &domain.RunSummary{
		RunID:               runID,
		Input:               p.cfg.CSVPath,
		Output:              p.cfg.OutPath,
		Grid:                outcome.Indexer.Grid(),
		Resolution:          outcome.Indexer.Resolution(),
		Windows:             len(windows),
		Features:            len(outcome.Artifact.Features),
		ArtifactBytes:       len(outcome.Encoded),
		RowsLoaded:          loaded,
		RowsExcluded:        excluded,
		Attempts:            outcome.Attempts,
		ResolutionExhausted: outcome.Exhausted,
		GeneratedAt:         domain.Now(),
	}
	p.summary.Store(summary)

	if p.announcer != nil && p.cfg.AnnounceEnabled {
		if err := p.announcer.Announce(ctx, *summary); err != nil {
			logger.Error("announce failed", "error", err, "topic", p.cfg.KafkaAnnounceTopic)
		}
	}

	logger.Info("run complete",
		"grid", summary.Grid,
		"resolution", summary.Resolution,
		"windows", summary.Windows,
		"features", summary.Features,
		"bytes", summary.ArtifactBytes,
		"attempts", summary.Attempts,
		"resolution_exhausted", summary.ResolutionExhausted,
		"elapsed", time.Since(start),
	)
	return summary, nil
}

// buildIndexer selects the spatial strategy. An unavailable H3 binding
// downgrades to the bin grid with a warning instead of failing the run.
func buildIndexer(cfg *config.Config, logger *slog.Logger) (spatial.CellIndexer, error) {
	if cfg.Grid == config.GridH3 {
		hex, err := spatial.NewHexIndexer(cfg.H3Res)
		if err != nil {
			return nil, err
		}
		if probeErr := hex.Probe(); probeErr != nil {
			logger.Warn("h3 indexing unavailable, falling back to bin grid",
				"error", probeErr, "bin_size", cfg.BinSize)
		} else {
			return hex, nil
		}
	}
	grid, err := spatial.NewGridIndexer(cfg.BinSize)
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// WriteArtifact writes the encoded artifact to path, creating parent
// directories and staging through a temp file in the same directory, so the
// destination only ever holds a complete artifact.
func WriteArtifact(path string, encoded []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".aggregates-*.json")
	if err != nil {
		return fmt.Errorf("stage artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}
