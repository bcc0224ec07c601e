//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/isd-etl-service/internal/adapter/postgres"
	"github.com/couchcryptid/isd-etl-service/internal/config"
	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/couchcryptid/isd-etl-service/internal/observability"
	"github.com/couchcryptid/isd-etl-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// parsedMessage holds a deserialized message read from the sink topic.
type parsedMessage struct {
	Observation domain.Observation
	Key         string
	Headers     map[string]string
}

// readParsed reads a single message from the sink consumer and deserializes it.
func readParsed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) parsedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var obs domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &obs), "unmarshal sink message")

	return parsedMessage{
		Observation: obs,
		Key:         string(msg.Key),
		Headers:     headers,
	}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func publishLines(ctx context.Context, t *testing.T, broker string, lines ...string) {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(lines))
	for i, line := range lines {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("line-%d", i)),
			Value: []byte(line + "\n"),
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip an ISD line through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	line := loadMockLines(t)[0]
	publishLines(ctx, t, broker, line)

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("line-0"), raw.Key)
	assert.Equal(t, line+"\n", string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(isd.NewParser(), nil, discardLogger())
	event, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{event}))

	pm := readParsed(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "010230-99999", pm.Headers[domain.HeaderIdentifier])
	assert.Equal(t, "2020-01-01T00:00:00Z", pm.Headers[domain.HeaderDatestamp])
	_, err = time.Parse(time.RFC3339, pm.Headers[domain.HeaderProcessedAt])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, string(event.Key), pm.Key)
	assert.Equal(t, "010230-99999", pm.Observation.Identifier)
	temp, ok := pm.Observation.Measure(isd.SectionMandatory, "air_temperature_observation_air_temperature")
	require.True(t, ok)
	celsius, ok := temp.Value.Float()
	require.True(t, ok)
	assert.Equal(t, -2.9, celsius)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer →
// Postgres + Writer) and verifies every sample line reaches both sinks.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	dsn := startPostgres(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	lines := loadMockLines(t)
	publishLines(ctx, t, broker, lines...)

	metrics := observability.NewMetricsForTesting()

	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := postgres.NewStore(db, "isd_observations", metrics, discardLogger())
	require.NoError(t, store.EnsureSchema(ctx))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	transformer := pipeline.NewTransformer(isd.NewParser(), nil, discardLogger())
	p := pipeline.New(reader, transformer, pipeline.FanOutLoader{store, writer}, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	received := make([]parsedMessage, 0, len(lines))
	for len(received) < len(lines) {
		received = append(received, readParsed(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	stations := map[string]int{}
	for _, pm := range received {
		stations[pm.Observation.Identifier]++
		assert.Equal(t, pm.Observation.ID, pm.Key)
		assert.Equal(t, pm.Observation.Identifier, pm.Headers[domain.HeaderIdentifier])
	}
	assert.Equal(t, 2, stations["010230-99999"])
	assert.Equal(t, 3, stations["725030-14732"])

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows, `SELECT count(*) FROM isd_observations`))
	assert.Equal(t, len(lines), rows)

	var identifier string
	require.NoError(t, db.GetContext(ctx, &identifier,
		`SELECT document->>'identifier' FROM isd_observations WHERE datestamp = $1`,
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "010230-99999", identifier)

	assert.Equal(t, float64(len(lines)), testutil.ToFloat64(metrics.RecordsStored.WithLabelValues("inserted")))
}

// TestPostgresStoreIdempotent verifies that loading the same batch twice
// leaves one row per observation.
func TestPostgresStoreIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	dsn := startPostgres(ctx, t)
	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	metrics := observability.NewMetricsForTesting()
	_, err = db.ExecContext(ctx, `CREATE SCHEMA weather`)
	require.NoError(t, err)
	store := postgres.NewStore(db, "weather.observations", metrics, discardLogger())
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx), "schema creation is repeatable")

	transformer := pipeline.NewTransformer(isd.NewParser(), nil, discardLogger())
	var batch []domain.OutputEvent
	for _, line := range loadMockLines(t) {
		ev, err := transformer.Transform(ctx, domain.RawEvent{Value: []byte(line)})
		require.NoError(t, err)
		batch = append(batch, ev)
	}

	require.NoError(t, store.LoadBatch(ctx, batch))
	require.NoError(t, store.LoadBatch(ctx, batch))

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows, `SELECT count(*) FROM weather.observations`))
	assert.Equal(t, len(batch), rows)
	assert.Equal(t, float64(len(batch)), testutil.ToFloat64(metrics.RecordsStored.WithLabelValues("inserted")))
	assert.Equal(t, float64(len(batch)), testutil.ToFloat64(metrics.RecordsStored.WithLabelValues("duplicate")))
}

// TestPipelineTransformError verifies that a malformed line (poison pill) is
// skipped and the pipeline continues processing valid lines.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	valid := loadMockLines(t)[0]
	publishLines(ctx, t, broker, "0130010230999992020", valid)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(isd.NewParser(), nil, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	pm := readParsed(ctx, t, consumer)
	assert.Equal(t, "010230-99999", pm.Observation.Identifier)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ParseErrors.WithLabelValues(domain.ReasonShortLine)))
}
