package config

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Options are the free-form settings of a backend. JSON numbers and booleans
// are accepted and stored in their textual form, so "amount": 7 and
// "amount": "7" are equivalent.
type Options map[string]string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("options must be an object: %w", err)
	}
	out := make(Options, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("option %q: %w", k, err)
			}
			out[k] = s
		case len(v) > 0 && (v[0] == '{' || v[0] == '['):
			return fmt.Errorf("option %q must be a string, number or boolean", k)
		case string(v) == "null":
			out[k] = ""
		default:
			out[k] = string(v)
		}
	}
	*o = out
	return nil
}
