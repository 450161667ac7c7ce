package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// GeocodeEnricher implements Enricher with reverse geocoding of the event
// coordinates.
type GeocodeEnricher struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewEnricher creates a GeocodeEnricher. Pass a nil geocoder to disable
// geocoding enrichment.
func NewEnricher(geocoder domain.Geocoder, logger *slog.Logger) *GeocodeEnricher {
	return &GeocodeEnricher{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *GeocodeEnricher) Enrich(ctx context.Context, event domain.QuakeEvent) domain.QuakeEvent {
	return domain.EnrichWithGeocoding(ctx, event, t.geocoder, t.logger)
}
