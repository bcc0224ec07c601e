package isd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	valueAbsent valueKind = iota
	valueText
	valueFixed
)

// Value is the decoded content of one measure: absent, a string, or a
// fixed-point number stored as an integer count of 1/scale units.
//
// The zero Value is absent.
type Value struct {
	kind  valueKind
	text  string
	units int64
	scale int64
}

// Absent returns the marker for "no observation".
func Absent() Value { return Value{} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: valueText, text: s} }

// Fixed returns the number units/scale. A non-positive scale is treated as 1.
func Fixed(units, scale int64) Value {
	if scale <= 0 {
		scale = 1
	}
	return Value{kind: valueFixed, units: units, scale: scale}
}

// IsAbsent reports whether the value is the absent marker.
func (v Value) IsAbsent() bool { return v.kind == valueAbsent }

// Text returns the string content of a text value.
func (v Value) Text() (string, bool) {
	if v.kind != valueText {
		return "", false
	}
	return v.text, true
}

// Float returns a numeric value as float64. The conversion is a single
// division of two exactly representable integers, so the result is the
// float64 nearest to the decimal value (690/10 is exactly 69).
func (v Value) Float() (float64, bool) {
	if v.kind != valueFixed {
		return 0, false
	}
	return float64(v.units) / float64(v.scale), true
}

// Units returns the integer numerator and the scale of a numeric value.
func (v Value) Units() (units, scale int64, ok bool) {
	if v.kind != valueFixed {
		return 0, 0, false
	}
	return v.units, v.scale, true
}

// Equal reports whether two values carry the same content. Numbers compare by
// magnitude, so 790/10 equals 79/1.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case valueText:
		return v.text == o.text
	case valueFixed:
		a, _ := v.Float()
		b, _ := o.Float()
		return a == b
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case valueText:
		return v.text
	case valueFixed:
		return formatFixed(v.units, v.scale)
	default:
		return "<absent>"
	}
}

// MarshalJSON encodes absent as null, text as a string and numbers as exact
// decimals written from the integer domain.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueText:
		return json.Marshal(v.text)
	case valueFixed:
		return []byte(formatFixed(v.units, v.scale)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the forms written by MarshalJSON. Plain decimal
// numbers are read back without going through float64.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = Absent()
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}

	units, scale, err := parseDecimal(string(data))
	if err != nil {
		return fmt.Errorf("decode measure value %s: %w", data, err)
	}
	*v = Fixed(units, scale)
	return nil
}

// formatFixed renders units/scale without floating-point noise. Scales that
// are powers of ten are rendered digit by digit with at least one fractional
// digit; other scales fall back to the shortest float64 representation.
func formatFixed(units, scale int64) string {
	places := decimalPlaces(scale)
	if places < 0 {
		s := strconv.FormatFloat(float64(units)/float64(scale), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	neg := units < 0
	mag := uint64(units)
	if neg {
		mag = uint64(-(units + 1)) + 1
	}
	whole := mag / uint64(scale)
	frac := mag % uint64(scale)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(whole, 10))
	b.WriteByte('.')
	if places == 0 {
		b.WriteByte('0')
		return b.String()
	}
	digits := strconv.FormatUint(frac, 10)
	b.WriteString(strings.Repeat("0", places-len(digits)))
	b.WriteString(digits)
	return b.String()
}

// decimalPlaces returns n when scale == 10^n, otherwise -1.
func decimalPlaces(scale int64) int {
	places := 0
	for scale > 1 {
		if scale%10 != 0 {
			return -1
		}
		scale /= 10
		places++
	}
	if scale != 1 {
		return -1
	}
	return places
}

func parseDecimal(s string) (units, scale int64, err error) {
	if strings.ContainsAny(s, "eE") {
		return 0, 0, fmt.Errorf("exponent notation is not supported")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 18 {
		return 0, 0, fmt.Errorf("too many fractional digits")
	}
	units, err = strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	scale = int64(math.Pow10(len(frac)))
	return units, scale, nil
}
