package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/google/uuid"
)

// Source reads the full normalized record set.
type Source interface {
	Load(ctx context.Context) (domain.LoadResult, error)
}

// Enricher decorates a filtered event before it is returned.
type Enricher interface {
	Enrich(ctx context.Context, event domain.QuakeEvent) domain.QuakeEvent
}

// Result is the output of one load-filter run.
type Result struct {
	RunID    string
	Range    domain.DateRange
	Events   []domain.QuakeEvent
	Warnings []domain.RowWarning
	Rows     int
	Dropped  int
}

// Pipeline orchestrates load, date filtering, and optional enrichment. It
// holds no record state between runs; every Run reloads the source.
type Pipeline struct {
	source   Source
	enricher Enricher
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Pipeline. Pass a nil enricher to return events as loaded.
func New(src Source, enricher Enricher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   src,
		enricher: enricher,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the source has been loaded successfully at
// least once, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("source has not been loaded yet")
	}
	return nil
}

// Run loads the source and returns the events whose occurrence time falls
// inside r, in original row order. An invalid range is rejected before the
// source is touched.
func (p *Pipeline) Run(ctx context.Context, r domain.DateRange) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	if err := r.Validate(); err != nil {
		p.metrics.PipelineRuns.WithLabelValues("invalid_range").Inc()
		p.metrics.InvalidRanges.Inc()
		logger.Warn("rejected date range", "error", err)
		return nil, err
	}

	loaded, err := p.load(ctx, logger)
	if err != nil {
		return nil, err
	}

	events, err := domain.FilterByDate(loaded.Events, r)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("invalid_range").Inc()
		return nil, err
	}
	events, err = p.enrich(ctx, events)
	if err != nil {
		p.metrics.PipelineRuns.WithLabelValues("canceled").Inc()
		logger.Warn("enrichment interrupted", "error", err)
		return nil, fmt.Errorf("run: %w", err)
	}

	elapsed := time.Since(start)
	p.metrics.PipelineRuns.WithLabelValues("success").Inc()
	p.metrics.EventsReturned.Observe(float64(len(events)))
	p.metrics.RunDuration.Observe(elapsed.Seconds())

	logger.Info("run complete",
		"range", r.String(),
		"rows", loaded.Rows,
		"dropped", loaded.Dropped,
		"warnings", len(loaded.Warnings),
		"events", len(events),
		"duration", elapsed,
	)

	return &Result{
		RunID:    runID,
		Range:    r,
		Events:   events,
		Warnings: loaded.Warnings,
		Rows:     loaded.Rows,
		Dropped:  loaded.Dropped,
	}, nil
}

// LoadAll returns the full normalized record set without date filtering or
// enrichment.
func (p *Pipeline) LoadAll(ctx context.Context) (domain.LoadResult, error) {
	return p.load(ctx, p.logger)
}

func (p *Pipeline) load(ctx context.Context, logger *slog.Logger) (domain.LoadResult, error) {
	loaded, err := p.source.Load(ctx)
	if err != nil {
		outcome := "source_error"
		if ctx.Err() != nil {
			outcome = "canceled"
		}
		p.metrics.PipelineRuns.WithLabelValues(outcome).Inc()
		logger.Error("source load failed", "error", err)
		return domain.LoadResult{}, fmt.Errorf("run: %w", err)
	}

	p.metrics.RowsRead.Add(float64(loaded.Rows))
	p.metrics.RowsDropped.Add(float64(loaded.Dropped))
	for _, w := range loaded.Warnings {
		p.metrics.RowWarnings.WithLabelValues(w.Column).Inc()
	}
	p.metrics.SourceRecords.Set(float64(len(loaded.Events)))
	p.metrics.LastLoadSuccess.SetToCurrentTime()
	p.ready.Store(true)

	return loaded, nil
}

// enrich fails with the context error when ctx ends before every event has
// been enriched.
func (p *Pipeline) enrich(ctx context.Context, events []domain.QuakeEvent) ([]domain.QuakeEvent, error) {
	if p.enricher == nil {
		return events, nil
	}
	for i := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events[i] = p.enricher.Enrich(ctx, events[i])
	}
	return events, ctx.Err()
}
