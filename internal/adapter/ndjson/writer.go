// Package ndjson writes serialized observations as newline-delimited JSON.
package ndjson

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
)

// Writer is a batch loader that emits each event value on its own line.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// LoadBatch writes the batch and flushes it, so a batch is either fully
// handed to the underlying writer or reported as failed.
func (n *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := n.w.Write(ev.Value); err != nil {
			return fmt.Errorf("write record %s: %w", ev.Key, err)
		}
		if err := n.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write record %s: %w", ev.Key, err)
		}
	}
	if err := n.w.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}
