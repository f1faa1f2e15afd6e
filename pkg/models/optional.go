package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OptionalString is the absent-value marker for nullable text fields.
// It distinguishes three states the source data conflates: a value that is
// present (possibly empty), a value that is absent (missing key, null, or a
// NaN sentinel written by the CSV export), and the literal string "NaN",
// which is a present value.
type OptionalString struct {
	value   string
	present bool
}

// String wraps a present value.
func String(s string) OptionalString {
	return OptionalString{value: s, present: true}
}

// NoString is the absent value.
func NoString() OptionalString {
	return OptionalString{}
}

// StringFrom normalizes a raw document value into an OptionalString.
// nil and NaN floats map to absent. Non-NaN floats are formatted, which
// covers numeric columns that leak into text fields during export.
func StringFrom(v any) OptionalString {
	switch t := v.(type) {
	case nil:
		return NoString()
	case string:
		return String(t)
	case float64:
		if math.IsNaN(t) {
			return NoString()
		}
		return String(strconv.FormatFloat(t, 'f', -1, 64))
	case float32:
		if math.IsNaN(float64(t)) {
			return NoString()
		}
		return String(strconv.FormatFloat(float64(t), 'f', -1, 32))
	default:
		return NoString()
	}
}

// Get returns the value and whether it is present.
func (o OptionalString) Get() (string, bool) {
	return o.value, o.present
}

// Or returns the value, or fallback when absent.
func (o OptionalString) Or(fallback string) string {
	if o.present {
		return o.value
	}
	return fallback
}

// Present reports whether a value is set, even an empty one.
func (o OptionalString) Present() bool {
	return o.present
}

// MarshalJSON encodes absent as null, never as "NaN" or a number.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON treats null as absent.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = NoString()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = String(s)
	return nil
}

// Absent reports whether a raw value is effectively empty: nil, an empty
// string, or a floating NaN. A zero count is a value, not an absence.
func Absent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case OptionalString:
		return !t.present
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	default:
		return false
	}
}

// AsInt64 coerces the numeric representations the stores hand back
// (BSON int32/int64, doubles, graph integers) into an int64.
func AsInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// SplitEmails turns the semicolon-delimited email column into a list of
// trimmed, non-empty addresses. The result is never nil: a person with no
// email has an empty list.
func SplitEmails(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ";") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
