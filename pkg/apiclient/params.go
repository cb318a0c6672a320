package apiclient

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Param is a single key/value pair.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered mapping of keys to primitive values. Order is kept
// exactly as given when encoding.
type Params []Param

// P builds Params from alternating key/value arguments. A trailing key
// without a value is dropped.
func P(kv ...any) Params {
	out := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Param{Key: fmt.Sprint(kv[i]), Value: kv[i+1]})
	}
	return out
}

// Add returns a copy of p with the pair appended.
func (p Params) Add(key string, value any) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	return append(out, Param{Key: key, Value: value})
}

// Truthy returns the pairs whose value is truthy, in order.
func (p Params) Truthy() Params {
	out := make(Params, 0, len(p))
	for _, kv := range p {
		if truthy(kv.Value) {
			out = append(out, kv)
		}
	}
	return out
}

// Query encodes the truthy pairs as a query string without the leading "?".
func (p Params) Query() string {
	kept := p.Truthy()
	if len(kept) == 0 {
		return ""
	}
	parts := make([]string, 0, len(kept))
	for _, kv := range kept {
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(formatValue(kv.Value)))
	}
	return strings.Join(parts, "&")
}

// withQuery appends "?query" to endpoint when there is anything to append.
func withQuery(endpoint string, filters Params) string {
	if q := filters.Query(); q != "" {
		return endpoint + "?" + q
	}
	return endpoint
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// truthy mirrors loose truthiness for primitives: nil, false, "", zero and NaN are false.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int8:
		return val != 0
	case int16:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint8:
		return val != 0
	case uint16:
		return val != 0
	case uint32:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case float64:
		return val != 0 && !math.IsNaN(val)
	default:
		return true
	}
}
