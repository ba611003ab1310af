// Package attr holds the typed attribute values extracted from part numbers.
//
// A Value carries no comparison logic of its own. How two values are judged
// depends entirely on the tolerance rule configured for the attribute they
// represent.
package attr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind distinguishes numeric, textual and absent values.
type Kind int

const (
	// KindAbsent means nothing was extracted for the attribute.
	KindAbsent Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is an immutable, unit-tagged attribute value.
// The zero Value is Absent, which is distinct from a numeric zero.
type Value struct {
	kind Kind
	num  float64
	text string
	unit string
}

// Absent is the value of an attribute that was not extracted.
var Absent = Value{}

// Number returns a numeric value in the given unit. NaN and infinities are
// not measurements and yield Absent.
func Number(v float64, unit string) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Absent
	}
	return Value{kind: KindNumber, num: v, unit: unit}
}

// Text returns a textual value in the given unit (usually empty).
func Text(s, unit string) Value {
	return Value{kind: KindText, text: s, unit: unit}
}

func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether no value was extracted.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNumeric reports whether the value holds a number.
func (v Value) IsNumeric() bool { return v.kind == KindNumber }

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// TextValue returns the textual value and whether the value is textual.
func (v Value) TextValue() (string, bool) {
	return v.text, v.kind == KindText
}

func (v Value) Unit() string { return v.unit }

// String renders the raw value without its unit.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Display renders the value with its unit, for reports.
func (v Value) Display() string {
	if v.kind == KindAbsent {
		return "-"
	}
	if v.unit == "" {
		return v.String()
	}
	return v.String() + " " + v.unit
}

// Parse builds a value from command-line or dataset text. Anything that parses
// as a finite float is numeric; everything else, including "NaN" and "Inf",
// is text. Empty input is Absent.
// Zero-padded codes such as package sizes ("0603") stay textual.
func Parse(raw, unit string) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Absent
	}
	if len(raw) > 1 && raw[0] == '0' && raw[1] >= '0' && raw[1] <= '9' {
		return Text(raw, unit)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f, unit)
	}
	return Text(raw, unit)
}

type jsonValue struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// MarshalJSON encodes the value as {"value": ..., "unit": ...}; Absent is null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(jsonValue{Value: v.num, Unit: v.unit})
	case KindText:
		return json.Marshal(jsonValue{Value: v.text, Unit: v.unit})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a bare number or string, or {"value", "unit"}.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*v = Absent
		return nil
	}

	var raw jsonValue
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid attribute value: %w", err)
		}
	} else if err := json.Unmarshal(data, &raw.Value); err != nil {
		return fmt.Errorf("invalid attribute value: %w", err)
	}

	switch val := raw.Value.(type) {
	case nil:
		*v = Absent
	case float64:
		*v = Number(val, raw.Unit)
	case string:
		*v = Text(val, raw.Unit)
	default:
		return fmt.Errorf("unsupported attribute value type %T", raw.Value)
	}
	return nil
}
