package isd

import (
	"time"
)

// Names of the control-section measures the parser derives the record key from.
const (
	MeasureUSAF = "usaf"
	MeasureWBAN = "wban"
	MeasureDate = "date"
	MeasureTime = "time"
)

// DefaultControlSection is the section name searched for the key fields.
const DefaultControlSection = "control"

const datestampLayout = "200601021504"

// SectionResolver picks the sections to evaluate for one line. It is called
// once per record, before any measure is decoded.
type SectionResolver interface {
	Resolve(line string) ([]Section, error)
}

// StaticSections resolves every line to the same sections.
type StaticSections []Section

func (s StaticSections) Resolve(string) ([]Section, error) { return s, nil }

// ResolverFunc adapts a function to SectionResolver.
type ResolverFunc func(line string) ([]Section, error)

func (f ResolverFunc) Resolve(line string) ([]Section, error) { return f(line) }

// Record is the parsed form of one ISD line.
type Record struct {
	Datestamp  time.Time       `json:"datestamp"`
	Identifier string          `json:"identifier"`
	Sections   []SectionResult `json:"sections"`
}

// Section returns the named section result.
func (r Record) Section(name string) (SectionResult, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionResult{}, false
}

// Measure finds a measure result by section and measure name.
func (r Record) Measure(section, measure string) (Result, bool) {
	s, ok := r.Section(section)
	if !ok {
		return Result{}, false
	}
	return s.Lookup(measure)
}

// Parser turns raw lines into Records. A Parser holds no per-record state and
// is safe for concurrent use.
type Parser struct {
	resolver SectionResolver
	control  string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithSections evaluates the given sections, in order, for every line.
func WithSections(sections ...Section) ParserOption {
	return func(p *Parser) { p.resolver = StaticSections(append([]Section(nil), sections...)) }
}

// WithResolver selects sections per line. A nil resolver leaves the current
// sections in place.
func WithResolver(r SectionResolver) ParserOption {
	return func(p *Parser) {
		if f, ok := r.(ResolverFunc); r == nil || (ok && f == nil) {
			return
		}
		p.resolver = r
	}
}

// WithControlSection changes the name of the section holding usaf, wban,
// date and time.
func WithControlSection(name string) ParserOption {
	return func(p *Parser) { p.control = name }
}

// NewParser returns a Parser evaluating the control and mandatory sections
// unless configured otherwise.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		resolver: StaticSections(DefaultSections()),
		control:  DefaultControlSection,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse evaluates every resolved section against line and derives the
// record's identifier and datestamp from the control section. On error no
// partial record is returned.
func (p *Parser) Parse(line string) (Record, error) {
	sections, err := p.resolver.Resolve(line)
	if err != nil {
		return Record{}, err
	}
	if len(sections) == 0 {
		return Record{}, malformed("no sections configured")
	}

	required := 0
	for _, s := range sections {
		required = max(required, s.MinLength())
	}
	if len(line) < required {
		return Record{}, &MalformedRecordError{
			Reason:   "line shorter than configured measures",
			Length:   len(line),
			Required: required,
		}
	}

	results := make([]SectionResult, len(sections))
	for i, s := range sections {
		results[i] = s.evaluate(line)
	}

	rec := Record{Sections: results}
	control, ok := rec.Section(p.control)
	if !ok {
		return Record{}, malformed("control section %q not configured", p.control)
	}

	fields, err := controlFields(control, MeasureUSAF, MeasureWBAN, MeasureDate, MeasureTime)
	if err != nil {
		return Record{}, err
	}
	rec.Identifier = StationIdentifier(fields[0], fields[1])
	rec.Datestamp, err = Datestamp(fields[2], fields[3])
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func controlFields(control SectionResult, names ...string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		r, ok := control.Lookup(name)
		if !ok {
			return nil, malformed("control section %q has no %q measure", control.Name, name)
		}
		text, ok := r.Value.Text()
		if !ok || text == "" {
			return nil, malformed("control measure %q has no value", name)
		}
		values[i] = text
	}
	return values, nil
}

// StationIdentifier joins the USAF and WBAN station numbers as "usaf-wban".
func StationIdentifier(usaf, wban string) string {
	return usaf + "-" + wban
}

// Datestamp combines an 8-digit YYYYMMDD date and a 4-digit HHMM time into a
// UTC timestamp. ISD times are already UTC; no conversion is applied.
func Datestamp(date, hhmm string) (time.Time, error) {
	if len(date) != 8 || len(hhmm) != 4 {
		return time.Time{}, malformed("date %q / time %q are not YYYYMMDD / HHMM", date, hhmm)
	}
	t, err := time.ParseInLocation(datestampLayout, date+hhmm, time.UTC)
	if err != nil {
		return time.Time{}, malformed("invalid date %q time %q: %v", date, hhmm, err)
	}
	return t, nil
}
