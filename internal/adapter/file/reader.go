// Package file reads ISD lines from plain or gzip-compressed files.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds a single ISD line. Real records stay far below it even
// with a full additional section.
const maxLineSize = 64 * 1024

// ErrLineTooLong is recorded for a line longer than 64 KiB. The line is
// skipped and reading resumes at the next one.
var ErrLineTooLong = errors.New("line exceeds 64 KiB")

var gzipMagic = []byte{0x1f, 0x8b}

// Source names one input stream: a file path, or "-" for stdin.
type Source struct {
	Name   string
	Reader io.Reader
}

// Reader extracts raw events line by line from a sequence of sources,
// transparently decompressing gzip input. It returns io.EOF once every
// source is exhausted.
//
// Read failures never stop the run: an unreadable source is abandoned
// after its last complete line, an over-long line is skipped, and both are
// reported by Err once extraction is done.
type Reader struct {
	sources []Source
	current *bufio.Reader
	closer  io.Closer
	name    string
	line    int64
	errs    []error
	logger  *slog.Logger
}

// NewReader creates a Reader over the given sources, read in order.
func NewReader(sources []Source, logger *slog.Logger) *Reader {
	return &Reader{sources: sources, logger: logger}
}

// Open returns a Reader over the named files. No paths means stdin.
func Open(paths []string, stdin io.Reader, logger *slog.Logger) (*Reader, error) {
	if len(paths) == 0 {
		return NewReader([]Source{{Name: "-", Reader: stdin}}, logger), nil
	}
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		if p == "-" {
			sources = append(sources, Source{Name: p, Reader: stdin})
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			for _, s := range sources {
				if c, ok := s.Reader.(io.Closer); ok && s.Name != "-" {
					c.Close() //nolint:errcheck // already failing
				}
			}
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		sources = append(sources, Source{Name: p, Reader: f})
	}
	return NewReader(sources, logger), nil
}

// ExtractBatch returns up to batchSize non-blank lines. When the last source
// runs out it returns the remaining lines together with io.EOF.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	events := make([]domain.RawEvent, 0, batchSize)
	for len(events) < batchSize {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		if r.current == nil {
			if err := r.next(); err != nil {
				if errors.Is(err, io.EOF) {
					return events, io.EOF
				}
				r.record(err)
				continue
			}
		}

		text, err := r.readLine()
		switch {
		case errors.Is(err, io.EOF):
			r.finish()
			continue
		case errors.Is(err, ErrLineTooLong):
			r.line++
			r.record(fmt.Errorf("read %s line %d: %w", r.name, r.line, err))
			continue
		case err != nil:
			r.record(fmt.Errorf("read %s after line %d: %w", r.name, r.line, err))
			r.finish()
			continue
		}

		r.line++
		if strings.TrimSpace(text) == "" {
			continue
		}
		events = append(events, domain.RawEvent{
			Value:     []byte(text),
			Topic:     r.name,
			Offset:    r.line,
			Timestamp: time.Now(),
		})
	}
	return events, nil
}

// Err reports every read failure seen so far, or nil.
func (r *Reader) Err() error {
	return errors.Join(r.errs...)
}

// Close releases every source that is still open.
func (r *Reader) Close() error {
	r.finish()
	var firstErr error
	for _, s := range r.sources {
		if c, ok := s.Reader.(io.Closer); ok && s.Name != "-" {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	r.sources = nil
	return firstErr
}

func (r *Reader) record(err error) {
	r.logger.Error("isd source read failed", "error", err)
	r.errs = append(r.errs, err)
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as is; a truncated stream mid-line yields
// the stream error and no partial line.
func (r *Reader) readLine() (string, error) {
	data, err := r.current.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.current.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err != nil && !(errors.Is(err, io.EOF) && len(data) > 0) {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// next opens the following source, or returns io.EOF when none remain.
func (r *Reader) next() error {
	if len(r.sources) == 0 {
		return io.EOF
	}
	src := r.sources[0]
	r.sources = r.sources[1:]

	var closer io.Closer
	if c, ok := src.Reader.(io.Closer); ok && src.Name != "-" {
		closer = c
	}
	in, zr, err := decompress(src.Reader)
	if err != nil {
		if closer != nil {
			closer.Close() //nolint:errcheck // already failing
		}
		return fmt.Errorf("open %s: %w", src.Name, err)
	}
	if zr != nil {
		closer = multiCloser{zr, closer}
	}

	r.current = bufio.NewReaderSize(in, maxLineSize)
	r.closer = closer
	r.name = src.Name
	r.line = 0
	r.logger.Debug("reading isd source", "source", src.Name)
	return nil
}

func (r *Reader) finish() {
	if r.current == nil {
		return
	}
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			r.logger.Warn("close isd source", "source", r.name, "error", err)
		}
	}
	r.logger.Debug("finished isd source", "source", r.name, "lines", r.line)
	r.current = nil
	r.closer = nil
}

// decompress sniffs the gzip magic bytes and wraps the stream accordingly.
func decompress(src io.Reader) (io.Reader, io.Closer, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	if !bytes.Equal(head, gzipMagic) {
		return br, nil, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip header: %w", err)
	}
	return zr, zr, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var firstErr error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
