package httpadapter

import (
	"bufio"
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxParseBody = 1 << 20

type parseError struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

// handleParse parses every non-blank line of the request body and replies
// with a JSON array of records. The first malformed line fails the whole
// request with 422 and its 1-based line number.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	sc := bufio.NewScanner(http.MaxBytesReader(w, r.Body, maxParseBody))
	sc.Buffer(make([]byte, 0, 4096), maxParseBody)

	records := make([]isd.Record, 0, 1)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		obs, err := domain.ParseRawEvent(s.parser, domain.RawEvent{Value: []byte(line)})
		if err != nil {
			status := http.StatusUnprocessableEntity
			if !errors.Is(err, isd.ErrMalformedRecord) {
				status = http.StatusInternalServerError
			}
			sharedobs.WriteJSON(w, status, parseError{Error: err.Error(), Line: n})
			return
		}
		records = append(records, obs.Record)
	}
	if err := sc.Err(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, bufio.ErrTooLong) {
			sharedobs.WriteJSON(w, http.StatusRequestEntityTooLarge, parseError{Error: "request body too large"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusBadRequest, parseError{Error: err.Error()})
		return
	}
	if len(records) == 0 {
		sharedobs.WriteJSON(w, http.StatusBadRequest, parseError{Error: "request body holds no ISD lines"})
		return
	}

	s.logger.Debug("parsed lines over http", "records", len(records))
	sharedobs.WriteJSON(w, http.StatusOK, records)
}
