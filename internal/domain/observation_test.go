package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLine       = "0130010230999992020010100004+69067+018533FM-12+007999999V0200501N001019999999N999999999-00291-00381099661"
	testIdentifier = "010230-99999"
)

func parseTestLine(t *testing.T) Observation {
	t.Helper()
	obs, err := ParseRawEvent(isd.NewParser(), RawEvent{Value: []byte(testLine)})
	require.NoError(t, err)
	return obs
}

func TestParseRawEvent(t *testing.T) {
	parser := isd.NewParser()

	t.Run("plain line", func(t *testing.T) {
		obs, err := ParseRawEvent(parser, RawEvent{Value: []byte(testLine)})
		require.NoError(t, err)
		assert.Equal(t, testIdentifier, obs.Identifier)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), obs.Datestamp)
		assert.True(t, strings.HasPrefix(obs.ID, testIdentifier+"-"))
		assert.Len(t, obs.ID, len(testIdentifier)+1+16)
		assert.Equal(t, testLine, obs.RawLine)
		assert.True(t, obs.ProcessedAt.IsZero())
	})

	t.Run("line terminators stripped", func(t *testing.T) {
		plain, err := ParseRawEvent(parser, RawEvent{Value: []byte(testLine)})
		require.NoError(t, err)
		crlf, err := ParseRawEvent(parser, RawEvent{Value: []byte(testLine + "\r\n")})
		require.NoError(t, err)
		assert.Equal(t, plain.ID, crlf.ID)
		assert.Equal(t, testLine, crlf.RawLine)
	})

	t.Run("deterministic ID differs per line", func(t *testing.T) {
		a, err := ParseRawEvent(parser, RawEvent{Value: []byte(testLine)})
		require.NoError(t, err)
		other := testLine[:87] + "-0030" + testLine[92:]
		b, err := ParseRawEvent(parser, RawEvent{Value: []byte(other)})
		require.NoError(t, err)
		assert.Equal(t, a.Identifier, b.Identifier)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("short line", func(t *testing.T) {
		_, err := ParseRawEvent(parser, RawEvent{Value: []byte(testLine[:50])})
		require.Error(t, err)
		assert.ErrorIs(t, err, isd.ErrMalformedRecord)
		assert.Equal(t, ReasonShortLine, ParseErrorReason(err))
	})
}

func TestGenerateID_NoIdentifier(t *testing.T) {
	id := generateID("", "line")
	assert.Len(t, id, 16)
	assert.NotContains(t, id, "-")
}

func TestEnrichObservation(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 5, 0, 0, 0, time.FixedZone("X", 3600)))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	obs := EnrichObservation(parseTestLine(t))
	assert.Equal(t, time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC), obs.ProcessedAt)
	assert.Equal(t, time.UTC, obs.ProcessedAt.Location())
}

func TestStationPosition(t *testing.T) {
	lat, lon, ok := StationPosition(parseTestLine(t))
	require.True(t, ok)
	assert.Equal(t, 69.067, lat)
	assert.Equal(t, 18.533, lon)

	missing := testLine[:28] + "+99999" + testLine[34:]
	obs, err := ParseRawEvent(isd.NewParser(), RawEvent{Value: []byte(missing)})
	require.NoError(t, err)
	_, _, ok = StationPosition(obs)
	assert.False(t, ok)

	_, _, ok = StationPosition(Observation{})
	assert.False(t, ok)
}

func TestSerializeObservation(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	obs := parseTestLine(t)
	obs.ProcessedAt = now

	out, err := SerializeObservation(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte(obs.ID), out.Key)
	assert.Equal(t, testIdentifier, out.Headers[HeaderIdentifier])
	assert.Equal(t, "2020-01-01T00:00:00Z", out.Headers[HeaderDatestamp])
	assert.Equal(t, "2026-01-01T00:00:05Z", out.Headers[HeaderProcessedAt])

	body := string(out.Value)
	assert.True(t, strings.HasPrefix(body, `{"id":"`+obs.ID+`","datestamp":"2020-01-01T00:00:00Z","identifier":"010230-99999","sections":[`))
	assert.Contains(t, body, `{"usaf":"010230"}`)
	assert.Contains(t, body, `"processed_at":"2026-01-01T00:00:05Z"`)
	assert.NotContains(t, body, `"station"`)
	assert.NotContains(t, body, testLine)

	var decoded Observation
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, obs.ID, decoded.ID)
	assert.Equal(t, obs.Identifier, decoded.Identifier)
	assert.Len(t, decoded.Sections, 2)
}

func TestParseErrorReason(t *testing.T) {
	assert.Equal(t, ReasonShortLine, ParseErrorReason(&isd.MalformedRecordError{Reason: "short", Length: 3, Required: 105}))
	assert.Equal(t, ReasonControl, ParseErrorReason(&isd.MalformedRecordError{Reason: "no usaf"}))
	assert.Equal(t, ReasonOther, ParseErrorReason(errors.New("boom")))
}
