package gateway

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Params is the loosely typed parameter map of a request.
type Params map[string]any

// String returns the trimmed string form of key, or "" when absent or not scalar.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// FirstString returns the first non-empty string among keys.
func (p Params) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := p.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Bool returns key as a boolean, def when absent or unparsable.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Limit returns key as an integer clamped to [lo, hi]. Missing, boolean or
// non-numeric input silently yields def. Fractions are floored and strings are
// read as decimal numbers only.
func (p Params) Limit(key string, def, lo, hi int) int {
	f, ok := limitValue(p[key])
	if !ok {
		f = float64(def)
	}
	f = math.Floor(f)

	// compare as float64 so out-of-range values never reach the int conversion
	if f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}

func limitValue(v any) (float64, bool) {
	switch v := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return v, !math.IsNaN(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.ContainsAny(s, "xXoObB_") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, !math.IsNaN(f)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, !math.IsNaN(f)
	}
}
