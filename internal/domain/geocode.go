package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding reverse-geocodes the cell center. If geocoder is nil the
// event is returned unchanged; on failure GeoSource is set to "failed" and the
// event is otherwise left intact.
func EnrichWithGeocoding(ctx context.Context, event CellEvent, geocoder Geocoder, logger *slog.Logger) CellEvent {
	if geocoder == nil {
		return event
	}

	result, err := geocoder.ReverseGeocode(ctx, event.Center.Lat, event.Center.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"event_id", event.ID,
			"code", event.Code,
			"lat", event.Center.Lat,
			"lon", event.Center.Lon,
			"error", err,
		)
		event.GeoSource = "failed"
		return event
	}
	if result.FormattedAddress == "" {
		event.GeoSource = "original"
		return event
	}

	event.FormattedAddress = result.FormattedAddress
	event.PlaceName = result.PlaceName
	event.GeoConfidence = result.Confidence
	event.GeoSource = "reverse"
	return event
}
