package models

import (
	"encoding/json"
	"strconv"
)

// Record is a single entity as returned by the inventory API: a flat mapping
// from field name to scalar value. Numbers decode as json.Number so that keys
// are echoed back to the server exactly as received.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value stored under key formatted for display or URL use.
// Missing and nil values format as the empty string.
func (r Record) String(key string) string {
	return FormatValue(r[key])
}

// Truthy reports whether the value under key would count as present in a
// loosely typed client: absent, nil, false, "" and zero are all false.
func (r Record) Truthy(key string) bool {
	switch v := r[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// Strings returns a copy of the record with every value formatted as a string.
func (r Record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = FormatValue(v)
	}
	return out
}

// FormatValue renders a scalar JSON value the way a text input would show it.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
