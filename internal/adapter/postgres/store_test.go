package postgres

import (
	"testing"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRow(t *testing.T) {
	ev := domain.OutputEvent{
		Key:   []byte("010230-99999-abcdef0123456789"),
		Value: []byte(`{"identifier":"010230-99999"}`),
		Headers: map[string]string{
			domain.HeaderIdentifier:  "010230-99999",
			domain.HeaderDatestamp:   "2020-01-01T00:00:00Z",
			domain.HeaderProcessedAt: "2024-06-01T12:30:00Z",
		},
	}

	r, err := toRow(ev)
	require.NoError(t, err)
	assert.Equal(t, "010230-99999-abcdef0123456789", r.ID)
	assert.Equal(t, "010230-99999", r.Identifier)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), r.Datestamp)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), r.ProcessedAt)
	assert.Equal(t, `{"identifier":"010230-99999"}`, r.Document)
}

func TestToRow_BadHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"missing datestamp", map[string]string{domain.HeaderProcessedAt: "2024-06-01T12:30:00Z"}},
		{"bad processed_at", map[string]string{
			domain.HeaderDatestamp:   "2020-01-01T00:00:00Z",
			domain.HeaderProcessedAt: "yesterday",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toRow(domain.OutputEvent{Key: []byte("k"), Headers: tt.headers})
			assert.Error(t, err)
		})
	}
}

func TestInsertQuery(t *testing.T) {
	q := insertQuery("weather.isd_observations")
	assert.Contains(t, q, "INSERT INTO weather.isd_observations")
	assert.Contains(t, q, "CAST(:document AS jsonb)")
	assert.Contains(t, q, "ON CONFLICT (id) DO NOTHING")
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements("weather.isd_observations")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS weather.isd_observations")
	assert.Contains(t, stmts[1], "isd_observations_identifier_datestamp_idx ON weather.isd_observations")
}

func TestIndexPrefix(t *testing.T) {
	assert.Equal(t, "isd_observations", indexPrefix("isd_observations"))
	assert.Equal(t, "obs", indexPrefix("weather.obs"))
}
