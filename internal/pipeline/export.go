package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// BatchPublisher writes multiple normalized events to the destination.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []domain.QuakeEvent) error
}

const (
	initialBackoff     = 200 * time.Millisecond
	maxBackoff         = 5 * time.Second
	maxPublishAttempts = 5
)

// Export loads the full normalized record set and publishes it in batches of
// batchSize. A failed batch is retried with exponential backoff; Export gives
// up after maxPublishAttempts and returns the number of events published so far.
func (p *Pipeline) Export(ctx context.Context, sink BatchPublisher, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("export: batch size must be positive, got %d", batchSize)
	}

	loaded, err := p.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	p.logger.Info("export started", "events", len(loaded.Events), "batch_size", batchSize)

	published := 0
	for start := 0; start < len(loaded.Events); start += batchSize {
		end := min(start+batchSize, len(loaded.Events))
		batch := loaded.Events[start:end]

		if err := p.publishWithRetry(ctx, sink, batch); err != nil {
			return published, fmt.Errorf("export: batch at offset %d: %w", start, err)
		}
		published += len(batch)
		p.metrics.EventsPublished.Add(float64(len(batch)))
	}

	p.logger.Info("export complete", "published", published)
	return published, nil
}

func (p *Pipeline) publishWithRetry(ctx context.Context, sink BatchPublisher, batch []domain.QuakeEvent) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= maxPublishAttempts; attempt++ {
		if err = sink.PublishBatch(ctx, batch); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)
		if attempt == maxPublishAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return err
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
