package isd

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord matches any *MalformedRecordError via errors.Is.
	ErrMalformedRecord = errors.New("malformed isd record")

	// ErrInvalidMeasureDefinition matches any *InvalidMeasureDefinitionError via errors.Is.
	ErrInvalidMeasureDefinition = errors.New("invalid measure definition")
)

// MalformedRecordError reports a line that cannot be parsed with the configured
// sections: it is too short for the configured offsets, or the control fields
// needed to derive the identifier and datestamp are missing or unreadable.
type MalformedRecordError struct {
	Reason   string
	Length   int // length of the offending line
	Required int // minimum length required by the configured measures, 0 if not a length failure
}

func (e *MalformedRecordError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("%s: %s (line length %d, required %d)", ErrMalformedRecord, e.Reason, e.Length, e.Required)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedRecord, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// InvalidMeasureDefinitionError is returned when a measure or section
// definition is rejected at construction time.
type InvalidMeasureDefinitionError struct {
	Measure string
	Reason  string
}

func (e *InvalidMeasureDefinitionError) Error() string {
	if e.Measure == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidMeasureDefinition, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidMeasureDefinition, e.Measure, e.Reason)
}

func (e *InvalidMeasureDefinitionError) Is(target error) bool {
	return target == ErrInvalidMeasureDefinition
}

func malformed(format string, args ...any) *MalformedRecordError {
	return &MalformedRecordError{Reason: fmt.Sprintf(format, args...)}
}

func invalidDefinition(measure, format string, args ...any) *InvalidMeasureDefinitionError {
	return &InvalidMeasureDefinitionError{Measure: measure, Reason: fmt.Sprintf(format, args...)}
}
