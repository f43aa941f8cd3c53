package pipeline

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a raw payload value to a float64 the way a JavaScript
// Number() conversion would, returning 0 for anything that is missing or not
// numeric. It is the only numeric coercion path in the pipeline.
func ToNumber(v any) float64 {
	return ToNumberOr(v, 0)
}

// ToNumberOr coerces v like ToNumber but returns def for missing or
// non-numeric values. NaN and infinities never escape.
func ToNumberOr(v any, def float64) float64 {
	var f float64

	switch x := v.(type) {
	case nil:
		return def
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		return parseNumber(string(x), def)
	case string:
		return parseNumber(x, def)
	case bool:
		if x {
			return 1
		}
		return 0
	case []any:
		// A one-element array converts through its element's string form.
		if len(x) != 1 {
			return def
		}
		if _, isBool := x[0].(bool); isBool {
			return def
		}
		return ToNumberOr(x[0], def)
	default:
		return def
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// parseNumber accepts unsigned 0x/0o/0b integers and signed decimal literals
// with an optional exponent. Anything else, including infinities, yields def.
func parseNumber(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return def
			}
			return float64(n)
		}
	}

	if strings.Trim(s, "0123456789+-.eE") != "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// ToText coerces a raw payload value to a string. Missing values and objects
// become ""; arrays join their elements with commas.
func ToText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = ToText(e)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// ToCount coerces a raw value to a non-negative whole number.
func ToCount(v any) int {
	f := ToNumber(v)
	if f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
