package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attaches reverse-geocoded place details to an event
// with coordinates. A nil geocoder leaves the event untouched; an event
// without both coordinates gets Place.Source "original"; a failed lookup gets
// Place.Source "failed" and keeps everything else.
func EnrichWithGeocoding(ctx context.Context, event QuakeEvent, geocoder Geocoder, logger *slog.Logger) QuakeEvent {
	if geocoder == nil {
		return event
	}

	if !event.HasCoordinates() {
		event.Place = &Place{Source: "original"}
		return event
	}

	result, err := geocoder.ReverseGeocode(ctx, *event.Latitude, *event.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"event_id", event.ID,
			"lat", *event.Latitude,
			"lon", *event.Longitude,
			"error", err,
		)
		event.Place = &Place{Source: "failed"}
		return event
	}
	if result.FormattedAddress == "" {
		event.Place = &Place{Source: "original"}
		return event
	}

	event.Place = &Place{
		FormattedAddress: result.FormattedAddress,
		PlaceName:        result.PlaceName,
		Confidence:       result.Confidence,
		Source:           "reverse",
	}
	return event
}
