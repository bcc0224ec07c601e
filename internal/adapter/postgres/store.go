package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/couchcryptid/isd-etl-service/internal/observability"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// Store writes serialized observations into a Postgres table, one row per
// record ID. Rows that already exist are left untouched.
type Store struct {
	db      *sqlx.DB
	table   string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// row is the column set of the observation table.
type row struct {
	ID          string    `db:"id"`
	Identifier  string    `db:"identifier"`
	Datestamp   time.Time `db:"datestamp"`
	Document    string    `db:"document"`
	ProcessedAt time.Time `db:"processed_at"`
}

// Connect opens a connection pool to dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// NewStore creates a Store writing to table. The table name must already be
// validated as a plain or schema-qualified SQL identifier.
func NewStore(db *sqlx.DB, table string, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{db: db, table: table, metrics: metrics, logger: logger}
}

// EnsureSchema creates the observation table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema for %s: %w", s.table, err)
		}
	}
	s.logger.Info("postgres schema ready", "table", s.table)
	return nil
}

// LoadBatch inserts every event in one transaction. Events already stored
// under the same ID are counted as duplicates and skipped.
func (s *Store) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]row, 0, len(events))
	for _, ev := range events {
		r, err := toRow(ev)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := insertQuery(s.table)
	var inserted, duplicate int
	for _, r := range rows {
		res, err := tx.NamedExecContext(ctx, query, r)
		if err != nil {
			return fmt.Errorf("insert observation %s: %w", r.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected for %s: %w", r.ID, err)
		}
		if n == 0 {
			duplicate++
		} else {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}

	s.metrics.RecordsStored.WithLabelValues("inserted").Add(float64(inserted))
	s.metrics.RecordsStored.WithLabelValues("duplicate").Add(float64(duplicate))
	s.logger.Debug("batch stored", "table", s.table, "inserted", inserted, "duplicate", duplicate)
	return nil
}

func toRow(ev domain.OutputEvent) (row, error) {
	datestamp, err := time.Parse(time.RFC3339, ev.Headers[domain.HeaderDatestamp])
	if err != nil {
		return row{}, fmt.Errorf("event %s: datestamp header: %w", ev.Key, err)
	}
	processedAt, err := time.Parse(time.RFC3339, ev.Headers[domain.HeaderProcessedAt])
	if err != nil {
		return row{}, fmt.Errorf("event %s: processed_at header: %w", ev.Key, err)
	}
	return row{
		ID:          string(ev.Key),
		Identifier:  ev.Headers[domain.HeaderIdentifier],
		Datestamp:   datestamp,
		Document:    string(ev.Value),
		ProcessedAt: processedAt,
	}, nil
}

func insertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (id, identifier, datestamp, document, processed_at)
		VALUES (:id, :identifier, :datestamp, CAST(:document AS jsonb), :processed_at)
		ON CONFLICT (id) DO NOTHING`, table)
}

func schemaStatements(table string) []string {
	index := indexPrefix(table)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id           TEXT PRIMARY KEY,
			identifier   TEXT NOT NULL,
			datestamp    TIMESTAMPTZ NOT NULL,
			document     JSONB NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_identifier_datestamp_idx ON %s (identifier, datestamp)`, index, table),
	}
}

// indexPrefix drops the schema qualifier, since index names cannot carry one.
func indexPrefix(table string) string {
	return table[strings.LastIndexByte(table, '.')+1:]
}
