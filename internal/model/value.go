package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a loosely typed scalar received from the listing API.
// The upstream API is not consistent about field types: prices arrive as
// strings on some endpoints and as numbers on others, and article codes
// may be numeric. Value keeps the original JSON encoding so items can be
// written back out verbatim, and offers accessors that interpret the
// value the way the filters need it.
//
// The zero Value represents a field that was absent from the response.
type Value struct {
	raw json.RawMessage
}

// StringValue returns a Value holding a JSON string.
func StringValue(s string) Value {
	raw, _ := json.Marshal(s) //nolint:errcheck,errchkjson // strings always marshal
	return Value{raw: raw}
}

// NumberValue returns a Value holding a JSON number.
func NumberValue(f float64) Value {
	return Value{raw: json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))}
}

// Absent reports whether the field was missing from the upstream object.
func (v Value) Absent() bool {
	return len(v.raw) == 0
}

// IsNull reports whether the field was present with a JSON null.
func (v Value) IsNull() bool {
	return bytes.Equal(v.raw, []byte("null"))
}

// Empty reports whether the value carries no usable content.
// Absent fields, null, false, the empty string and the number zero are
// empty; every other value (including the string "0") is not.
func (v Value) Empty() bool {
	if v.Absent() || v.IsNull() {
		return true
	}
	switch v.raw[0] {
	case '"':
		return v.String() == ""
	case 'f':
		return true
	case 't', '[', '{':
		return false
	}
	f, err := strconv.ParseFloat(string(v.raw), 64)
	return err == nil && f == 0
}

// String returns the textual form of the value.
// Strings are unquoted, numbers and booleans use their JSON text, and
// absent or null values yield the empty string.
func (v Value) String() string {
	if v.Absent() || v.IsNull() {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err != nil {
			return string(v.raw)
		}
		return s
	}
	return string(v.raw)
}

// Raw returns the original JSON encoding. The returned slice must not be modified.
func (v Value) Raw() json.RawMessage {
	return v.raw
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Absent() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	v.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}
