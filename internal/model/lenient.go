package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an integer decoded from whatever the model put there: 62,
// 62.5, "62" or "62%". Fractions are rounded. Values that are not numeric
// decode to zero.
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	switch x := v.(type) {
	case float64:
		*n = Number(math.Round(x))
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(x), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(math.Round(f))
	default:
		*n = 0
	}
	return nil
}

// Strings is a list of labels that also accepts a single comma-separated
// string. Non-string list elements are kept in their JSON text form.
type Strings []string

func (s *Strings) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*s = nil
		return nil
	}
	switch x := v.(type) {
	case string:
		*s = splitLabels(x)
	case []any:
		out := make(Strings, 0, len(x))
		for _, el := range x {
			switch e := el.(type) {
			case nil:
			case string:
				if e = strings.TrimSpace(e); e != "" {
					out = append(out, e)
				}
			default:
				b, _ := json.Marshal(e)
				out = append(out, string(b))
			}
		}
		*s = out
	default:
		*s = nil
	}
	return nil
}

func splitLabels(s string) Strings {
	var out Strings
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
