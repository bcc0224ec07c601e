// Package domain wraps parsed NOAA Integrated Surface Database (ISD) records
// in the envelope the ETL pipeline publishes.
//
// # Data Source
//
// ISD lines originate from the NCEI global-hourly archive
// (https://www.ncei.noaa.gov/data/global-hourly/). An upstream collector, or
// the isdparse CLI, publishes one raw fixed-width line per message to the
// Kafka source topic. The message value is the line itself; a trailing
// "\n" or "\r\n" is tolerated and stripped.
//
// # Observation Envelope
//
//	{
//	  "id": "010230-99999-3f2a9c1b7d4e5f60",
//	  "datestamp": "2020-01-01T00:00:00Z",
//	  "identifier": "010230-99999",
//	  "sections": [...],
//	  "station": {"lat": 69.067, "lon": 18.533, "place_name": "...", "geo_source": "reverse"},
//	  "processed_at": "2026-01-01T00:00:05Z"
//	}
//
// The sections are produced by package isd. station is present only when
// geocoding is enabled and the control section carries both latitude and
// longitude; geo_source is "reverse" on success, "original" when the
// provider returned no place and "failed" when the request errored.
//
// # ID Generation
//
// Observation IDs are the station identifier followed by the first 8 bytes of
// the SHA-256 of the raw line, hex encoded. Replaying the same line yields the
// same ID, which keeps the Postgres sink idempotent (ON CONFLICT DO NOTHING).
// See [generateID].
//
// # Headers
//
// Serialized observations carry identifier, datestamp and processed_at
// headers (RFC 3339, UTC) so consumers can route without decoding the body.
package domain
