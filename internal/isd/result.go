package isd

import "encoding/json"

// Result is the decoded output of one measure.
type Result struct {
	Measure     string
	Unit        string
	Value       Value
	Description string

	bare bool
}

// IsBare reports whether the result serializes as a bare name/value pair.
func (r Result) IsBare() bool { return r.bare }

type resultJSON struct {
	Measure     string `json:"measure"`
	Value       Value  `json:"value"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// MarshalJSON writes {"measure","value","unit","description"}, omitting an
// empty unit or description. Bare results are written as {"<measure>": value}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.bare {
		return json.Marshal(map[string]Value{r.Measure: r.Value})
	}
	return json.Marshal(resultJSON{
		Measure:     r.Measure,
		Value:       r.Value,
		Unit:        r.Unit,
		Description: r.Description,
	})
}

// UnmarshalJSON reads both the wrapped and the bare shape. A wrapped result
// always carries at least "measure" and "value", so a single-key object is
// bare whatever its key is named.
func (r *Result) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) == 1 {
		for name, raw := range fields {
			var v Value
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*r = Result{Measure: name, Value: v, bare: true}
		}
		return nil
	}

	var w resultJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Result{Measure: w.Measure, Value: w.Value, Unit: w.Unit, Description: w.Description}
	return nil
}

// SectionResult holds the results of one section, in declaration order.
type SectionResult struct {
	Name     string   `json:"name"`
	Measures []Result `json:"measures"`
}

// Lookup returns the first result for the named measure.
func (s SectionResult) Lookup(measure string) (Result, bool) {
	for _, r := range s.Measures {
		if r.Measure == measure {
			return r, true
		}
	}
	return Result{}, false
}
