package schemax

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// coerceError is the kernel-level failure: a stable code plus structured
// params. The engine attaches loc, input echo, and the rendered message.
type coerceError struct {
	code string
	ctx  map[string]any
}

func cerr(code string, kv ...any) *coerceError {
	e := &coerceError{code: code}
	if len(kv) > 0 {
		e.ctx = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.ctx[kv[i].(string)] = kv[i+1]
		}
	}
	return e
}

// coerceScalar applies the per-type coercion table for non-container kinds.
// Lax mode follows the fixed conversion rules below; strict mode accepts only
// values already of the target type (or behaviorally identical, such as an
// integral json.Number for an int field). Booleans never coerce to numbers
// in either mode.
func coerceScalar(v any, kind TypeKind, strict bool) (any, *coerceError) {
	switch kind {
	case KindAny:
		return v, nil
	case KindBool:
		return coerceBool(v, strict)
	case KindInt:
		return coerceInt(v, strict)
	case KindFloat:
		return coerceFloat(v, strict)
	case KindString:
		return coerceString(v, strict)
	case KindBytes:
		return coerceBytes(v, strict)
	case KindDecimal:
		return coerceDecimal(v, strict)
	case KindTime:
		return coerceTime(v, strict)
	}
	return nil, cerr(CodeModelType)
}

func coerceBool(v any, strict bool) (any, *coerceError) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if strict {
		return nil, cerr(CodeBoolType)
	}
	switch t := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "on", "1":
			return true, nil
		case "false", "f", "no", "n", "off", "0":
			return false, nil
		}
		return nil, cerr(CodeBoolParsing)
	case json.Number:
		switch t.String() {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, cerr(CodeBoolParsing)
	}
	if n, ok := asInt64(v); ok {
		switch n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, cerr(CodeBoolParsing)
	}
	if f, ok := asFloat64(v); ok {
		switch f {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, cerr(CodeBoolParsing)
	}
	return nil, cerr(CodeBoolType)
}

func coerceInt(v any, strict bool) (any, *coerceError) {
	// bool must never silently become 0/1, in either mode
	if _, ok := v.(bool); ok {
		return nil, cerr(CodeIntType)
	}
	if n, ok := asInt64(v); ok {
		return n, nil
	}
	if u, ok := asUint64(v); ok {
		if u > math.MaxInt64 {
			return nil, cerr(CodeIntParsing, "reason", "overflow")
		}
		return int64(u), nil
	}
	if num, ok := v.(json.Number); ok {
		if n, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
			return n, nil
		}
		if strict {
			return nil, cerr(CodeIntType)
		}
		return intFromFloatText(num.String())
	}
	if strict {
		return nil, cerr(CodeIntType)
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		return nil, cerr(CodeIntParsing)
	case float64:
		return intFromFloat(t)
	case float32:
		return intFromFloat(float64(t))
	case decimal.Decimal:
		if t.IsInteger() {
			if n, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
				return n, nil
			}
			return nil, cerr(CodeIntParsing, "reason", "overflow")
		}
		return nil, cerr(CodeIntParsing)
	}
	return nil, cerr(CodeIntType)
}

// intFromFloat accepts only lossless conversions.
func intFromFloat(f float64) (any, *coerceError) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return nil, cerr(CodeIntParsing)
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return nil, cerr(CodeIntParsing, "reason", "overflow")
	}
	return int64(f), nil
}

func intFromFloatText(s string) (any, *coerceError) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, cerr(CodeIntParsing)
	}
	return intFromFloat(f)
}

func coerceFloat(v any, strict bool) (any, *coerceError) {
	if _, ok := v.(bool); ok {
		return nil, cerr(CodeFloatType)
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, cerr(CodeFloatParsing)
		}
		return f, nil
	}
	if strict {
		return nil, cerr(CodeFloatType)
	}
	if n, ok := asInt64(v); ok {
		return float64(n), nil
	}
	if u, ok := asUint64(v); ok {
		return float64(u), nil
	}
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, cerr(CodeFloatParsing)
		}
		return f, nil
	case decimal.Decimal:
		f, _ := t.Float64()
		return f, nil
	}
	return nil, cerr(CodeFloatType)
}

func coerceString(v any, strict bool) (any, *coerceError) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if !strict {
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
	}
	return nil, cerr(CodeStringType)
}

func coerceBytes(v any, strict bool) (any, *coerceError) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if !strict {
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	}
	return nil, cerr(CodeBytesType)
}

// coerceDecimal never routes through a binary float: lax float input is
// formatted to its canonical decimal string first and that string is parsed.
func coerceDecimal(v any, strict bool) (any, *coerceError) {
	if _, ok := v.(bool); ok {
		return nil, cerr(CodeDecimalType)
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, cerr(CodeDecimalParsing)
		}
		return d, nil
	}
	if strict {
		return nil, cerr(CodeDecimalType)
	}
	if n, ok := asInt64(v); ok {
		return decimal.NewFromInt(n), nil
	}
	if u, ok := asUint64(v); ok {
		d, err := decimal.NewFromString(strconv.FormatUint(u, 10))
		if err != nil {
			return nil, cerr(CodeDecimalParsing)
		}
		return d, nil
	}
	switch t := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil, cerr(CodeDecimalParsing)
		}
		return d, nil
	case float64:
		return decimalFromFloat(t)
	case float32:
		return decimalFromFloat(float64(t))
	}
	return nil, cerr(CodeDecimalType)
}

func decimalFromFloat(f float64) (any, *coerceError) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, cerr(CodeDecimalParsing, "reason", "non-finite")
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return nil, cerr(CodeDecimalParsing)
	}
	return d, nil
}

func coerceTime(v any, strict bool) (any, *coerceError) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	if strict {
		return nil, cerr(CodeTimeType)
	}
	if s, ok := v.(string); ok {
		t, err := parseRFC3339(s)
		if err != nil {
			return nil, cerr(CodeTimeParsing)
		}
		return t, nil
	}
	return nil, cerr(CodeTimeType)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC; RFC3339Nano trims trailing zeros
	return t.UTC().Format(time.RFC3339Nano)
}

// asSequence re-materializes any slice or array into []any, preserving
// order. Strings, bytes, and mappings are excluded.
func asSequence(v any, kind TypeKind) ([]any, *coerceError) {
	badType := CodeListType
	if kind == KindSet {
		badType = CodeSetType
	}
	switch t := v.(type) {
	case []any:
		return append([]any(nil), t...), nil
	case string, []byte, nil:
		return nil, cerr(badType)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, cerr(badType)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// asMapping re-materializes any map into map[string]any. Strict mode accepts
// only map[string]any; lax mode coerces keys to strings.
func asMapping(v any, strict bool) (map[string]any, *coerceError) {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil
	}
	if strict {
		return nil, cerr(CodeDictType)
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, cerr(CodeDictType)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := cast.ToStringE(iter.Key().Interface())
		if err != nil {
			return nil, cerr(CodeDictType, "reason", "non-string key")
		}
		out[k] = iter.Value().Interface()
	}
	return out, nil
}

// canonicalKey renders a coerced value into a stable identity for set
// deduplication.
func canonicalKey(v any) string {
	switch t := v.(type) {
	case string:
		return "s:" + t
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case decimal.Decimal:
		return "d:" + t.String()
	case time.Time:
		return "t:" + formatRFC3339Canonical(t)
	}
	if b, err := gojson.Marshal(v); err == nil {
		return "j:" + string(b)
	}
	return "v:" + reflect.TypeOf(v).String()
}

// sortedKeys returns map keys in ascending order for deterministic traversal.
func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint:
		return uint64(t), true
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
