package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/jismesh-etl/internal/domain"
	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
)

// CellTransformer decodes mesh statistics rows into cell events, optionally
// grouped under a target level and enriched with a place name.
type CellTransformer struct {
	geocoder    domain.Geocoder
	targetLevel meshcode.Level
	logger      *slog.Logger
}

// NewTransformer creates a CellTransformer. Pass a nil geocoder to disable
// geocoding enrichment and a zero level to disable grouping.
func NewTransformer(geocoder domain.Geocoder, targetLevel meshcode.Level, logger *slog.Logger) *CellTransformer {
	return &CellTransformer{
		geocoder:    geocoder,
		targetLevel: targetLevel,
		logger:      logger,
	}
}

func (t *CellTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	event = domain.EnrichCellEvent(event, t.targetLevel)
	event = domain.EnrichWithGeocoding(ctx, event, t.geocoder, t.logger)

	return domain.SerializeCellEvent(event)
}
