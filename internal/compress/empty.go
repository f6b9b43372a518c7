package compress

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field is a single key/value pair of an ordered object.
type Field struct {
	Key   string
	Value any
}

// Fields is a JSON object that keeps its key order when marshalled.
type Fields []Field

// MarshalJSON writes the fields in order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StripEmpty recursively drops nil values, blank strings and empty lists
// from objects. Lists keep their non-nil elements. Numbers and booleans are
// kept even when zero.
func StripEmpty(v any) any {
	switch t := v.(type) {
	case Fields:
		out := make(Fields, 0, len(t))
		for _, f := range t {
			if isEmpty(f.Value) {
				continue
			}
			out = append(out, Field{Key: f.Key, Value: StripEmpty(f.Value)})
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isEmpty(val) {
				continue
			}
			out[k] = StripEmpty(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val == nil {
				continue
			}
			out = append(out, StripEmpty(val))
		}
		return out
	}
	return v
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// JSON marshals v after StripEmpty. Marshalling failures yield "{}".
func JSON(v any) string {
	data, err := json.Marshal(StripEmpty(v))
	if err != nil {
		return "{}"
	}
	return string(data)
}
