package isd

// Section is an ordered, named group of measures. The order mirrors the
// left-to-right layout of the line and is the order of the output.
type Section struct {
	name      string
	measures  []Measure
	minLength int
}

// NewSection groups measures under name. Measure names must be unique within
// the section.
func NewSection(name string, measures ...Measure) (Section, error) {
	if name == "" {
		return Section{}, invalidDefinition("", "section name is required")
	}

	seen := make(map[string]struct{}, len(measures))
	minLength := 0
	for _, m := range measures {
		if m.kind == 0 {
			return Section{}, invalidDefinition("", "section %q holds an unconstructed measure", name)
		}
		if _, dup := seen[m.name]; dup {
			return Section{}, invalidDefinition(m.name, "duplicate measure in section %q", name)
		}
		seen[m.name] = struct{}{}
		minLength = max(minLength, m.pos.End)
	}

	return Section{
		name:      name,
		measures:  append([]Measure(nil), measures...),
		minLength: minLength,
	}, nil
}

// MustSection panics if err is non-nil.
func MustSection(s Section, err error) Section {
	if err != nil {
		panic(err)
	}
	return s
}

func (s Section) Name() string { return s.name }

// Measures returns a copy of the section's measures.
func (s Section) Measures() []Measure { return append([]Measure(nil), s.measures...) }

// Len returns the number of measures.
func (s Section) Len() int { return len(s.measures) }

// MinLength is the shortest line every measure of the section can be read from.
func (s Section) MinLength() int { return s.minLength }

// Evaluate decodes every measure against line, in declaration order. A line
// too short for the section's offsets is a *MalformedRecordError.
func (s Section) Evaluate(line string) (SectionResult, error) {
	if len(line) < s.minLength {
		return SectionResult{}, &MalformedRecordError{
			Reason:   "line too short for section " + s.name,
			Length:   len(line),
			Required: s.minLength,
		}
	}
	return s.evaluate(line), nil
}

func (s Section) evaluate(line string) SectionResult {
	results := make([]Result, len(s.measures))
	for i, m := range s.measures {
		results[i] = m.Decode(line)
	}
	return SectionResult{Name: s.name, Measures: results}
}
