package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Coercion helpers for map-shaped source data. Fields arrive mis-typed often
// enough (numbers as strings, single values where arrays are expected) that
// every read goes through one of these instead of a bare type assertion.

func getMap(data map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if m, ok := data[key].(map[string]any); ok {
			return m
		}
	}
	return nil
}

func getSlice(data map[string]any, keys ...string) []any {
	for _, key := range keys {
		if s, ok := data[key].([]any); ok {
			return s
		}
	}
	return nil
}

func getString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		val, ok := data[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func getFloat(data map[string]any, keys ...string) float64 {
	for _, key := range keys {
		val, ok := data[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case float64:
			if v != 0 {
				return v
			}
		case int:
			if v != 0 {
				return float64(v)
			}
		case string:
			cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f != 0 {
				return f
			}
		}
	}
	return 0
}

func getInt(data map[string]any, keys ...string) int {
	return int(getFloat(data, keys...))
}

// getStrings accepts a string array, an array of anything stringable, or a
// lone string, and returns the non-empty entries.
func getStrings(data map[string]any, keys ...string) []string {
	for _, key := range keys {
		val, ok := data[key]
		if !ok || val == nil {
			continue
		}
		switch v := val.(type) {
		case []string:
			if len(v) > 0 {
				return v
			}
		case []any:
			var result []string
			for _, item := range v {
				if s := anyToString(item); s != "" {
					result = append(result, s)
				}
			}
			if len(result) > 0 {
				return result
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

func anyToString(val any) string {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
