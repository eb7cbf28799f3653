package frame

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Normalize converts a cell value into a JSON-native value.
//
// Data sources hand back a mix of widths and wrappers: sized ints, float32,
// json.Number from streaming decoders, factors, NA markers and non-finite
// floats. Everything collapses to nil, bool, string, int64, uint64, float64,
// []any or map[string]any.
func Normalize(v any) any {
	if IsNA(v) {
		return nil
	}

	switch x := v.(type) {
	case bool, string:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(x.String(), 64); err == nil {
			return finite(f)
		}
		return x.String()
	case Factor:
		if label, ok := x.Label(); ok {
			return label
		}
		return nil
	case *Factor:
		if x == nil {
			return nil
		}
		return Normalize(*x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.Format(time.RFC3339)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []int:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = finite(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case fmt.Stringer:
		return x.String()
	case []byte:
		return string(x)
	default:
		return normalizeReflect(v)
	}
}

// normalizeReflect handles typed slices, arrays and string-keyed maps the
// switch does not name, e.g. []float32 or map[string]int.
func normalizeReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	default:
		return v
	}
}

// finite maps NaN and ±Inf to nil; JSON has no spelling for them.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// Float extracts a numeric cell as float64. ok is false for NA and
// non-numeric values. Numeric strings are parsed.
func Float(v any) (float64, bool) {
	switch x := Normalize(v).(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

