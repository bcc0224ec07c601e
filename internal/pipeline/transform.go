package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
)

// ISDTransformer implements Transformer: parse the line, stamp it, enrich it
// with station geocoding, and serialize it.
type ISDTransformer struct {
	parser   domain.RecordParser
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates an ISDTransformer. Pass a nil geocoder to disable
// station geocoding.
func NewTransformer(parser domain.RecordParser, geocoder domain.Geocoder, logger *slog.Logger) *ISDTransformer {
	return &ISDTransformer{
		parser:   parser,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *ISDTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	obs, err := domain.ParseRawEvent(t.parser, raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	obs = domain.EnrichObservation(obs)
	obs = domain.EnrichWithGeocoding(ctx, obs, t.geocoder, t.logger)

	return domain.SerializeObservation(obs)
}
