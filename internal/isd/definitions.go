package isd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefinitionsFile is the YAML form of a list of section definitions:
//
//	sections:
//	  - name: control
//	    measures:
//	      - name: usaf
//	        kind: raw
//	        columns: [5, 10]
//	        bare: true
//	      - name: latitude
//	        kind: scaled
//	        columns: [29, 34]
//	        scale: 1000
//	        missing: "+99999"
//	        unit: angular_degrees
//	      - name: data_source_flag
//	        kind: coded
//	        columns: [28, 28]
//	        codes: data_source_flag
//
// columns are the 1-based inclusive columns of the ISD format document;
// range is a zero-based half-open [start, end) alternative.
type DefinitionsFile struct {
	Sections []SectionDefinition `yaml:"sections"`
}

// SectionDefinition is one section of a DefinitionsFile.
type SectionDefinition struct {
	Name     string              `yaml:"name"`
	Measures []MeasureDefinition `yaml:"measures"`
}

// MeasureDefinition is one measure of a SectionDefinition.
type MeasureDefinition struct {
	Name        string            `yaml:"name"`
	Kind        string            `yaml:"kind"`
	Columns     []int             `yaml:"columns,omitempty,flow"`
	Range       []int             `yaml:"range,omitempty,flow"`
	Scale       *int64            `yaml:"scale,omitempty"`
	Missing     *string           `yaml:"missing,omitempty"`
	Unit        string            `yaml:"unit,omitempty"`
	Codes       string            `yaml:"codes,omitempty"`
	Table       map[string]string `yaml:"table,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Bare        bool              `yaml:"bare,omitempty"`
}

// LoadSections decodes a DefinitionsFile and builds its sections. Every
// definition error is reported here, before any line is parsed.
func LoadSections(r io.Reader) ([]Section, error) {
	var file DefinitionsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidDefinition("", "definitions file is empty")
		}
		return nil, fmt.Errorf("decode section definitions: %w", err)
	}
	return file.Build()
}

// LoadSectionsFile reads section definitions from a YAML file.
func LoadSectionsFile(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open section definitions: %w", err)
	}
	defer f.Close()

	sections, err := LoadSections(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sections, nil
}

// Build constructs the sections described by the file.
func (f DefinitionsFile) Build() ([]Section, error) {
	if len(f.Sections) == 0 {
		return nil, invalidDefinition("", "no sections defined")
	}

	sections := make([]Section, 0, len(f.Sections))
	names := make(map[string]struct{}, len(f.Sections))
	for _, sd := range f.Sections {
		if _, dup := names[sd.Name]; dup {
			return nil, invalidDefinition("", "duplicate section %q", sd.Name)
		}
		names[sd.Name] = struct{}{}

		measures := make([]Measure, 0, len(sd.Measures))
		for _, md := range sd.Measures {
			m, err := md.Build()
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", sd.Name, err)
			}
			measures = append(measures, m)
		}
		s, err := NewSection(sd.Name, measures...)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// Build constructs the measure described by d.
func (d MeasureDefinition) Build() (Measure, error) {
	pos, err := d.position()
	if err != nil {
		return Measure{}, err
	}
	kind, err := ParseKind(d.Kind)
	if err != nil {
		return Measure{}, invalidDefinition(d.Name, "%v", err)
	}

	var opts []MeasureOption
	if d.Missing != nil {
		opts = append(opts, WithMissing(*d.Missing))
	}
	if d.Unit != "" {
		opts = append(opts, WithUnit(d.Unit))
	}
	if d.Description != "" {
		opts = append(opts, WithFixedDescription(d.Description))
	}
	if d.Bare {
		opts = append(opts, Bare())
	}

	switch kind {
	case KindRaw:
		return NewRawMeasure(d.Name, pos, opts...)
	case KindScaled:
		scale := int64(1)
		if d.Scale != nil {
			scale = *d.Scale
		}
		return NewScaledMeasure(d.Name, pos, scale, opts...)
	default:
		table, err := d.codeTable()
		if err != nil {
			return Measure{}, err
		}
		return NewCodedMeasure(d.Name, pos, table, opts...)
	}
}

func (d MeasureDefinition) position() (Position, error) {
	switch {
	case len(d.Columns) > 0 && len(d.Range) > 0:
		return Position{}, invalidDefinition(d.Name, "columns and range are mutually exclusive")
	case len(d.Columns) == 2:
		return Columns(d.Columns[0], d.Columns[1]), nil
	case len(d.Range) == 2:
		return Position{Start: d.Range[0], End: d.Range[1]}, nil
	default:
		return Position{}, invalidDefinition(d.Name, "one of columns [first, last] or range [start, end] is required")
	}
}

func (d MeasureDefinition) codeTable() (CodeTable, error) {
	switch {
	case d.Codes != "" && d.Table != nil:
		return CodeTable{}, invalidDefinition(d.Name, "codes and table are mutually exclusive")
	case d.Codes != "":
		t, ok := LookupCodeTable(d.Codes)
		if !ok {
			return CodeTable{}, invalidDefinition(d.Name, "unknown code table %q", d.Codes)
		}
		return t, nil
	default:
		return NewCodeTable(d.Table), nil
	}
}

// Describe converts sections back into their file form. Built-in code tables
// are referenced by name; other tables are written inline.
func Describe(sections []Section) DefinitionsFile {
	file := DefinitionsFile{Sections: make([]SectionDefinition, 0, len(sections))}
	for _, s := range sections {
		sd := SectionDefinition{Name: s.name, Measures: make([]MeasureDefinition, 0, len(s.measures))}
		for _, m := range s.measures {
			sd.Measures = append(sd.Measures, describeMeasure(m))
		}
		file.Sections = append(file.Sections, sd)
	}
	return file
}

func describeMeasure(m Measure) MeasureDefinition {
	d := MeasureDefinition{
		Name:        m.name,
		Kind:        m.kind.String(),
		Range:       []int{m.pos.Start, m.pos.End},
		Unit:        m.unit,
		Description: m.fixedDescription,
		Bare:        m.bare,
	}
	if m.kind == KindScaled {
		scale := m.scale
		d.Scale = &scale
	}
	if m.hasMissing {
		missing := m.missing
		d.Missing = &missing
	}
	if m.kind == KindCoded {
		if m.codes.name != "" {
			d.Codes = m.codes.name
		} else if m.codes.Len() > 0 {
			d.Table = m.codes.Map()
		}
	}
	return d
}

// MarshalSections writes sections as a YAML definitions document that
// LoadSections reads back.
func MarshalSections(sections []Section) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Describe(sections)); err != nil {
		return nil, fmt.Errorf("encode section definitions: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode section definitions: %w", err)
	}
	return buf.Bytes(), nil
}
