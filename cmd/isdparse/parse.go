package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/couchcryptid/isd-etl-service/internal/adapter/file"
	"github.com/couchcryptid/isd-etl-service/internal/adapter/ndjson"
	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/couchcryptid/isd-etl-service/internal/observability"
	"github.com/couchcryptid/isd-etl-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Convert ISD lines to JSON lines",
		Long: `Parse every line of the given files (plain or gzip) and write one JSON
record per line to stdout. With no files, or with "-", stdin is read.
Malformed lines are logged and skipped. Unreadable input (a truncated gzip
stream, a line over 64 KiB) is reported after the readable lines are
written, and the command exits non-zero.

Example:
  isdparse parse 010230-99999-2020.gz
  isdparse parse --strict - < sample.txt`,
		RunE: runParse,
	}
	cmd.Flags().Int("batch-size", 500, "lines per processing batch")
	cmd.Flags().Bool("strict", false, "exit non-zero when any line fails to parse")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	strict, _ := cmd.Flags().GetBool("strict")
	if batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", batchSize)
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	sections, err := activeSections(cmd)
	if err != nil {
		return err
	}

	reader, err := file.Open(args, cmd.InOrStdin(), logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	parser := isd.NewParser(isd.WithSections(sections...))
	transformer := &countingTransformer{inner: pipeline.NewTransformer(parser, nil, logger)}
	writer := ndjson.NewWriter(cmd.OutOrStdout())

	p := pipeline.New(reader, transformer, writer, logger, metrics, batchSize)
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}

	total, failed := transformer.total.Load(), transformer.failed.Load()
	logger.Info("parse complete", "lines", total, "failed", failed)
	if err := reader.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if strict && failed > 0 {
		return fmt.Errorf("%d of %d lines failed to parse", failed, total)
	}
	return nil
}

// countingTransformer tallies transform outcomes for the run summary.
type countingTransformer struct {
	inner  pipeline.Transformer
	total  atomic.Int64
	failed atomic.Int64
}

func (c *countingTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	c.total.Add(1)
	out, err := c.inner.Transform(ctx, raw)
	if err != nil {
		c.failed.Add(1)
	}
	return out, err
}
