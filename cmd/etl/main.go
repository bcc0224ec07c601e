package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/isd-etl-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/isd-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/isd-etl-service/internal/adapter/mapbox"
	"github.com/couchcryptid/isd-etl-service/internal/adapter/postgres"
	"github.com/couchcryptid/isd-etl-service/internal/config"
	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/couchcryptid/isd-etl-service/internal/observability"
	"github.com/couchcryptid/isd-etl-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	parser, err := newParser(cfg, logger)
	if err != nil {
		logger.Error("failed to load section definitions", "file", cfg.SectionsFile, "error", err)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	// The Postgres store runs first: it is idempotent, so a Kafka failure
	// that retries the batch only produces duplicate-skips there.
	loaders := pipeline.FanOutLoader{writer}
	if cfg.PostgresEnabled() {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store := postgres.NewStore(db, cfg.PostgresTable, metrics, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare postgres schema", "error", err)
			os.Exit(1)
		}
		loaders = pipeline.FanOutLoader{store, writer}
		logger.Info("postgres sink enabled", "table", cfg.PostgresTable)
	}

	transformer := pipeline.NewTransformer(parser, geocoder, logger)
	p := pipeline.New(reader, transformer, loaders, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, parser, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newParser builds the record parser from the built-in sections, or from
// ISD_SECTIONS_FILE when set.
func newParser(cfg *config.Config, logger *slog.Logger) (*isd.Parser, error) {
	if cfg.SectionsFile == "" {
		return isd.NewParser(), nil
	}
	sections, err := isd.LoadSectionsFile(cfg.SectionsFile)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded section definitions", "file", cfg.SectionsFile, "sections", len(sections))
	return isd.NewParser(isd.WithSections(sections...)), nil
}
