package apiclient

import (
	"encoding/json"
	"fmt"
)

// Result is the JSON body of a successful response.
type Result json.RawMessage

// Decode unmarshals the result into v.
func (r Result) Decode(v any) error {
	if err := json.Unmarshal(r, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Map decodes an object result into a generic map.
func (r Result) Map() (map[string]any, error) {
	var out map[string]any
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON keeps Result embeddable in other JSON documents.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// Decode is the generic form of Result.Decode.
func Decode[T any](r Result) (T, error) {
	var out T
	err := r.Decode(&out)
	return out, err
}
