package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/isd"
)

// Header keys set on every serialized observation.
const (
	HeaderIdentifier  = "identifier"
	HeaderDatestamp   = "datestamp"
	HeaderProcessedAt = "processed_at"
)

// Parse error reasons, used as metric labels.
const (
	ReasonShortLine = "short_line"
	ReasonControl   = "control"
	ReasonOther     = "other"
)

// RecordParser turns one ISD line into a record. *isd.Parser implements it.
type RecordParser interface {
	Parse(line string) (isd.Record, error)
}

// ParseRawEvent strips the line terminator from a raw event and parses it
// into an Observation.
func ParseRawEvent(parser RecordParser, raw RawEvent) (Observation, error) {
	line := strings.TrimRight(string(raw.Value), "\r\n")
	rec, err := parser.Parse(line)
	if err != nil {
		return Observation{}, fmt.Errorf("parse raw event: %w", err)
	}
	return Observation{
		ID:      generateID(rec.Identifier, line),
		Record:  rec,
		RawLine: line,
	}, nil
}

// generateID produces a deterministic ID from the station identifier and the
// raw line. Reprocessing the same line yields the same ID, so sinks can
// upsert with ON CONFLICT DO NOTHING.
func generateID(identifier, line string) string {
	hash := sha256.Sum256([]byte(line))
	short := hex.EncodeToString(hash[:8])
	if identifier == "" {
		return short
	}
	return identifier + "-" + short
}

// EnrichObservation stamps the processing time.
func EnrichObservation(obs Observation) Observation {
	obs.ProcessedAt = clock.Now().UTC()
	return obs
}

// StationPosition returns the control section latitude and longitude, when
// both are present.
func StationPosition(obs Observation) (lat, lon float64, ok bool) {
	latResult, ok := obs.Measure(isd.SectionControl, "latitude")
	if !ok {
		return 0, 0, false
	}
	lonResult, ok := obs.Measure(isd.SectionControl, "longitude")
	if !ok {
		return 0, 0, false
	}
	lat, latOK := latResult.Value.Float()
	lon, lonOK := lonResult.Value.Float()
	if !latOK || !lonOK {
		return 0, 0, false
	}
	return lat, lon, true
}

// SerializeObservation marshals an Observation into an OutputEvent keyed by
// its ID.
func SerializeObservation(obs Observation) (OutputEvent, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize observation: %w", err)
	}
	return OutputEvent{
		Key:   []byte(obs.ID),
		Value: data,
		Headers: map[string]string{
			HeaderIdentifier:  obs.Identifier,
			HeaderDatestamp:   obs.Datestamp.UTC().Format(time.RFC3339),
			HeaderProcessedAt: obs.ProcessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}

// ParseErrorReason classifies a parse failure for metrics.
func ParseErrorReason(err error) string {
	var malformed *isd.MalformedRecordError
	switch {
	case errors.As(err, &malformed) && malformed.Required > 0:
		return ReasonShortLine
	case errors.As(err, &malformed):
		return ReasonControl
	default:
		return ReasonOther
	}
}
