package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attempts to enrich an observation with the place name
// of its station. If geocoder is nil or the station position is absent, the
// observation is returned unchanged. Geocoding failures degrade gracefully to
// a Station carrying only the original coordinates.
func EnrichWithGeocoding(ctx context.Context, obs Observation, geocoder Geocoder, logger *slog.Logger) Observation {
	if geocoder == nil {
		return obs
	}
	lat, lon, ok := StationPosition(obs)
	if !ok {
		return obs
	}

	station := &Station{Lat: lat, Lon: lon}
	obs.Station = station

	result, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"observation_id", obs.ID,
			"identifier", obs.Identifier,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		station.GeoSource = "failed"
		return obs
	}
	if result.FormattedAddress == "" {
		station.GeoSource = "original"
		return obs
	}

	station.FormattedAddress = result.FormattedAddress
	station.PlaceName = result.PlaceName
	station.GeoConfidence = result.Confidence
	station.GeoSource = "reverse"
	return obs
}
