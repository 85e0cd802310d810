package query

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
)

// Params is the flat parameter map of a compiled query.
//
// Values are strings, ints, float64s, bools or []string. Use Values to
// encode them for a request.
type Params map[string]any

// Clone returns a shallow copy with list values copied.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if list, ok := v.([]string); ok {
			v = slices.Clone(list)
		}
		out[k] = v
	}

	return out
}

// Merge returns a copy of p with extra applied on top.
func (p Params) Merge(extra Params) Params {
	out := p.Clone()
	maps.Copy(out, extra)

	return out
}

// Get returns the value of key rendered as a string, and whether it is set.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}

	return formatParam(v), true
}

// Values encodes the parameters as URL values. List values become
// repeated keys.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		switch v := p[k].(type) {
		case []string:
			values[k] = slices.Clone(v)
		case []any:
			for _, item := range v {
				values.Add(k, formatParam(item))
			}
		default:
			values.Set(k, formatParam(v))
		}
	}

	return values
}

func formatParam(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}

	return fmt.Sprint(v)
}
