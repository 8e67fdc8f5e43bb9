package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"
)

// TimeLayout is the fixed-width UTC encoding used for stored timestamps so that
// lexical and chronological order agree.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// ErrInvalidTimestamp is returned for values that cannot be read as a time.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// FormatTime encodes t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime normalises any persisted timestamp representation to UTC. It accepts
// RFC 3339 strings, plain dates, epoch milliseconds, and {seconds, nanoseconds} objects.
func ParseTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, ErrInvalidTimestamp
		}
		return t.UTC(), nil
	case string:
		return parseTimeString(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, ErrInvalidTimestamp
		}
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case map[string]interface{}:
		return parseTimeObject(t)
	case Document:
		return parseTimeObject(t)
	}
	return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, v)
}

func parseTimeString(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

func parseTimeObject(m map[string]interface{}) (time.Time, error) {
	secs, ok := number(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("%w: object without seconds", ErrInvalidTimestamp)
	}
	nanos, _ := number(m, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(secs), int64(nanos)).UTC(), nil
}

func number(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case json.Number:
			f, err := n.Float64()
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// normalizeValue converts times to their stored encoding, recursing into objects and arrays.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return FormatTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return FormatTime(*t)
	case Document:
		return normalizeMap(t)
	case map[string]interface{}:
		return normalizeMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string, bool, float64, nil:
		return v
	}
	return normalizeKind(v)
}

// normalizeKind unwraps named scalar types such as models.RequestStatus.
func normalizeKind(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

// canonical normalises doc and round-trips it through JSON so stored values have JSON types.
func canonical(doc Document) (Document, []byte, error) {
	raw, err := json.Marshal(normalizeMap(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("encode document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, fmt.Errorf("decode document: %w", err)
	}
	return out, raw, nil
}
