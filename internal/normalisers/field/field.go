// Package field reads loosely-typed values out of decoded JSON reports.
// Every accessor is total: a missing key or an unexpected type yields the
// zero value instead of an error.
package field

import (
	"fmt"
	"strconv"
)

// String returns m[key] rendered as text. Strings are returned as-is,
// null and absent keys become "", other scalars use their JSON spelling.
func String(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return Text(v)
}

// Text renders a decoded JSON value as text.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Map returns m[key] if it is a JSON object.
func Map(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key].(map[string]any)
	return v, ok
}

// List returns m[key] if it is a JSON array.
func List(m map[string]any, key string) ([]any, bool) {
	v, ok := m[key].([]any)
	return v, ok
}

// Has reports whether key is present in m, whatever its value.
func Has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// Objects returns the JSON objects in list, skipping anything else.
func Objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Strings renders every element of m[key] as text.
// A scalar value is treated as a one-element list.
func Strings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return []string{Text(v)}
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = Text(item)
	}
	return out
}
