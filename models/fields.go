package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float that decodes leniently: JSON numbers, numeric strings and
// null are accepted, anything else decodes to 0. NaN and infinities are
// treated as malformed.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*n = Number(v)
		}
	case 't':
		if string(data) == "true" {
			*n = 1
		}
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err == nil {
			*n = Number(v)
		}
	}
	return nil
}

// Float returns the value as a float64.
func (n Number) Float() float64 { return float64(n) }

// Text is a string that also accepts JSON numbers and booleans, rendered the
// way a browser would stringify them. null and objects decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case 't', 'f':
		if string(data) == "true" || string(data) == "false" {
			*t = Text(data)
		}
	case 'n', '{', '[':
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err == nil {
			*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Flag is a boolean decoded with JSON truthiness: true, non-zero numbers and
// non-empty strings are true.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't':
		*f = string(data) == "true"
	case 'f', 'n':
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*f = s != ""
		}
	case '{', '[':
		*f = true
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err == nil {
			*f = v != 0
		}
	}
	return nil
}

// StringList decodes a JSON array of strings. Non-array values decode to an
// empty list and non-string elements are dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// Contains reports whether value is an element of the list.
func (l StringList) Contains(value string) bool {
	for _, v := range l {
		if v == value {
			return true
		}
	}
	return false
}

// isObject reports whether data holds a JSON object.
func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
