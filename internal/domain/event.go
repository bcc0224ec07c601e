package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/isd"
)

// RawEvent represents an unprocessed ISD line from the source: a Kafka
// message or one line of an ISD file.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string // topic or file name
	Partition int
	Offset    int64 // message offset or 1-based line number
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Station holds reverse-geocoding enrichment for the reporting station's
// position.
type Station struct {
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source"` // "reverse", "original", "failed"
}

// Observation is one parsed ISD record plus the envelope fields added by the
// pipeline.
type Observation struct {
	ID string `json:"id"`
	isd.Record

	Station     *Station  `json:"station,omitempty"`
	RawLine     string    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sinks.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
