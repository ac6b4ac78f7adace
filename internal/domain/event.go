package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/jismesh-etl/internal/meshcode"
	"github.com/paulmach/orb"
)

// KeyCode is a mesh code as it appears in source data. It unmarshals from
// either a JSON string or a JSON number.
type KeyCode string

func (k *KeyCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = KeyCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("KEY_CODE must be a string or number: %w", err)
	}
	*k = KeyCode(n.String())
	return nil
}

// MeshRecord is the JSON row published by the ingest command.
type MeshRecord struct {
	KeyCode KeyCode            `json:"KEY_CODE"`
	Values  map[string]float64 `json:"values,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// CellEvent is a mesh statistics row with its decoded geometry.
type CellEvent struct {
	ID       string               `json:"id"`
	Code     string               `json:"code"`
	Level    int                  `json:"level"`
	Center   meshcode.Coordinate  `json:"center"`
	BBox     meshcode.BoundingBox `json:"bbox"`
	Polygon  orb.Ring             `json:"polygon"`
	Values   map[string]float64   `json:"values,omitempty"`
	Parent   string               `json:"parent,omitempty"` // enclosing cell at the target level
	SourceAt time.Time            `json:"source_at"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
