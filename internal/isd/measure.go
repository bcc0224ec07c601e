package isd

import (
	"fmt"
	"strconv"
)

// Kind selects how a measure turns its slice of the line into a Value.
type Kind uint8

const (
	// KindRaw keeps the slice verbatim.
	KindRaw Kind = iota + 1
	// KindScaled reads a signed integer and divides it by the measure's scale.
	KindScaled
	// KindCoded keeps the code and attaches its description from a code table.
	KindCoded
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindScaled:
		return "scaled"
	case KindCoded:
		return "coded"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "raw":
		return KindRaw, nil
	case "scaled":
		return KindScaled, nil
	case "coded":
		return KindCoded, nil
	default:
		return 0, fmt.Errorf("unknown measure kind %q", s)
	}
}

// Position is a half-open, zero-based character range [Start, End) of a line.
type Position struct {
	Start int
	End   int
}

// Columns converts the 1-based inclusive column numbers printed in the ISD
// format document into a Position: Columns(5, 10) is Position{4, 10}.
func Columns(first, last int) Position {
	return Position{Start: first - 1, End: last}
}

// Width returns the number of characters covered.
func (p Position) Width() int { return p.End - p.Start }

func (p Position) String() string { return fmt.Sprintf("[%d,%d)", p.Start, p.End) }

// Measure describes one named field of an ISD line. Measures are immutable
// once built and may be shared by any number of goroutines.
type Measure struct {
	name             string
	pos              Position
	kind             Kind
	scale            int64
	missing          string
	hasMissing       bool
	unit             string
	codes            CodeTable
	fixedDescription string
	bare             bool
}

// MeasureOption customizes a measure at construction.
type MeasureOption func(*Measure)

// WithMissing sets the sentinel text that marks the field as not observed.
// It is compared against the whole field, so it must be exactly as wide as
// the measure's position.
func WithMissing(pattern string) MeasureOption {
	return func(m *Measure) {
		m.missing = pattern
		m.hasMissing = true
	}
}

// WithUnit attaches a descriptive unit to every result of the measure.
func WithUnit(unit string) MeasureOption {
	return func(m *Measure) { m.unit = unit }
}

// WithFixedDescription gives a coded measure the same description for every
// code, overriding its table.
func WithFixedDescription(description string) MeasureOption {
	return func(m *Measure) { m.fixedDescription = description }
}

// Bare makes results of the measure serialize as {"<name>": value}. The
// station identifier fields of the control section use this shape.
func Bare() MeasureOption {
	return func(m *Measure) { m.bare = true }
}

// NewRawMeasure defines a measure whose value is the slice itself.
func NewRawMeasure(name string, pos Position, opts ...MeasureOption) (Measure, error) {
	return newMeasure(Measure{name: name, pos: pos, kind: KindRaw}, opts)
}

// NewScaledMeasure defines a signed integer measure divided by scale.
func NewScaledMeasure(name string, pos Position, scale int64, opts ...MeasureOption) (Measure, error) {
	return newMeasure(Measure{name: name, pos: pos, kind: KindScaled, scale: scale}, opts)
}

// NewCodedMeasure defines a measure whose code is described by table.
func NewCodedMeasure(name string, pos Position, table CodeTable, opts ...MeasureOption) (Measure, error) {
	return newMeasure(Measure{name: name, pos: pos, kind: KindCoded, codes: table}, opts)
}

func newMeasure(m Measure, opts []MeasureOption) (Measure, error) {
	for _, opt := range opts {
		opt(&m)
	}
	if err := m.validate(); err != nil {
		return Measure{}, err
	}
	return m, nil
}

func (m Measure) validate() error {
	switch {
	case m.name == "":
		return invalidDefinition("", "name is required")
	case m.pos.Start < 0:
		return invalidDefinition(m.name, "negative start offset %d", m.pos.Start)
	case m.pos.Start >= m.pos.End:
		return invalidDefinition(m.name, "empty or inverted range %s", m.pos)
	}

	switch m.kind {
	case KindRaw:
	case KindScaled:
		if m.scale <= 0 {
			return invalidDefinition(m.name, "scale must be positive, got %d", m.scale)
		}
	case KindCoded:
		if m.hasMissing {
			return invalidDefinition(m.name, "coded measures always keep their code, missing pattern not allowed")
		}
	default:
		return invalidDefinition(m.name, "unknown kind %s", m.kind)
	}

	if m.fixedDescription != "" && m.kind != KindCoded {
		return invalidDefinition(m.name, "fixed description requires a coded measure")
	}
	if m.hasMissing && len(m.missing) != m.pos.Width() {
		return invalidDefinition(m.name, "missing pattern %q is %d wide, field is %d wide",
			m.missing, len(m.missing), m.pos.Width())
	}
	return nil
}

// MustMeasure panics if err is non-nil. It is meant for package-level
// definitions known to be valid.
func MustMeasure(m Measure, err error) Measure {
	if err != nil {
		panic(err)
	}
	return m
}

func (m Measure) Name() string             { return m.name }
func (m Measure) Position() Position       { return m.pos }
func (m Measure) Kind() Kind               { return m.kind }
func (m Measure) Unit() string             { return m.unit }
func (m Measure) Scale() int64             { return m.scale }
func (m Measure) Codes() CodeTable         { return m.codes }
func (m Measure) IsBare() bool             { return m.bare }
func (m Measure) FixedDescription() string { return m.fixedDescription }

// Missing returns the sentinel pattern, if one is configured.
func (m Measure) Missing() (string, bool) { return m.missing, m.hasMissing }

// Decode evaluates the measure against line. Offsets are trusted: callers
// must make sure the line is at least Position().End long, which Section and
// Parser do before decoding.
func (m Measure) Decode(line string) Result {
	field := line[m.pos.Start:m.pos.End]
	r := Result{Measure: m.name, Unit: m.unit, bare: m.bare}

	switch m.kind {
	case KindScaled:
		r.Value = m.decodeScaled(field)
	case KindCoded:
		r.Value = Text(field)
		r.Description = m.describe(field)
	default:
		if m.hasMissing && field == m.missing {
			r.Value = Absent()
		} else {
			r.Value = Text(field)
		}
	}
	return r
}

func (m Measure) decodeScaled(field string) Value {
	if m.hasMissing && field == m.missing {
		return Absent()
	}
	units, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return Absent()
	}
	return Fixed(units, m.scale)
}

func (m Measure) describe(code string) string {
	if m.fixedDescription != "" {
		return m.fixedDescription
	}
	d, _ := m.codes.Lookup(code)
	return d
}
