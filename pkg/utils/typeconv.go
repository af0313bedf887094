package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToFloat converts a loosely typed legacy value to a float. It returns nil for
// missing or empty values and an error for values that are present but not
// numeric.
func ToFloat(val interface{}) (*float64, error) {
	var f float64
	switch v := val.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert decimal %s to float: %w", v.String(), err)
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float: %w", v, err)
		}
		f = parsed
	case []byte:
		return ToFloat(string(v))
	default:
		return nil, fmt.Errorf("cannot convert %T to float", val)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return &f, nil
}

// FloatOr is ToFloat with a fallback for missing or malformed values.
func FloatOr(val interface{}, def float64) float64 {
	f, err := ToFloat(val)
	if err != nil || f == nil {
		return def
	}
	return *f
}

// ToString renders scalar legacy values as strings; nil becomes "".
func ToString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case primitive.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool accepts booleans, numbers and the usual string spellings.
func ToBool(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case nil:
		return false
	default:
		f, err := ToFloat(v)
		return err == nil && f != nil && *f != 0
	}
}

// ConvertDateTime parses the date representations found in legacy data.
func ConvertDateTime(val interface{}) (*time.Time, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return &v, nil
	case primitive.DateTime:
		t := v.Time().UTC()
		return &t, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, f := range formats {
			if t, err := time.Parse(f, s); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("unable to parse datetime: %s", v)
	case []byte:
		return ConvertDateTime(string(v))
	default:
		return nil, fmt.Errorf("cannot convert %T to datetime", val)
	}
}

// AsMap normalizes an embedded document into a plain map.
func AsMap(val interface{}) (map[string]interface{}, bool) {
	switch v := val.(type) {
	case map[string]interface{}:
		return v, true
	case primitive.M:
		return map[string]interface{}(v), true
	case primitive.D:
		m := make(map[string]interface{}, len(v))
		for _, e := range v {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

// AsDocSlice normalizes an embedded array of documents. Arrays stored as JSON
// text (as SQL sources do) are decoded first. Non-document elements are
// dropped.
func AsDocSlice(val interface{}) ([]map[string]interface{}, error) {
	var items []interface{}
	switch v := val.(type) {
	case nil:
		return nil, nil
	case primitive.A:
		items = v
	case []interface{}:
		items = v
	case []map[string]interface{}:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "null" {
			return nil, nil
		}
		var out []map[string]interface{}
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("failed to parse embedded array: %w", err)
		}
		return out, nil
	case []byte:
		return AsDocSlice(string(v))
	default:
		return nil, fmt.Errorf("cannot convert %T to document array", val)
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := AsMap(item); ok {
			out = append(out, m)
		}
	}
	return out, nil
}
