package model

import (
	"fmt"
	"strconv"
	"strings"
)

// locationParts is the priority order used when flattening a structured location.
var locationParts = []string{"city", "state", "province", "country"}

// FlattenLocation joins the city, state, province and country sub-fields of
// a structured location with ", ". Keys match case-insensitively; null and
// empty sub-fields are skipped.
func FlattenLocation(loc map[string]any) string {
	lower := make(map[string]any, len(loc))
	for k, v := range loc {
		lower[strings.ToLower(k)] = v
	}

	parts := make([]string, 0, len(locationParts))
	for _, key := range locationParts {
		s, ok := StringValue(lower[key])
		if !ok || s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// NormalizeLocation turns a raw location value into a display string.
// It reports false when the value is absent.
func NormalizeLocation(v any) (string, bool) {
	switch loc := v.(type) {
	case nil:
		return "", false
	case map[string]any:
		return FlattenLocation(loc), true
	case map[string]string:
		m := make(map[string]any, len(loc))
		for k, s := range loc {
			m[k] = s
		}
		return FlattenLocation(m), true
	default:
		return StringValue(loc)
	}
}

// CoerceFlag maps free text to a flag: true iff the text contains needle,
// case-insensitively. Booleans pass through and nil stays nil, so applying
// it twice gives the same answer.
func CoerceFlag(v any, needle string) *bool {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return &val
	case *bool:
		return val
	}
	s, ok := StringValue(v)
	if !ok {
		return nil
	}
	b := strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	return &b
}

// CoerceRemote reports whether a remote-work field allows remote work.
func CoerceRemote(v any) *bool {
	return CoerceFlag(v, "remote")
}

// CoerceFullTime reports whether a position-type field describes a full-time role.
func CoerceFullTime(v any) *bool {
	return CoerceFlag(v, "full")
}

// StringValue renders a scalar JSON value as a string. Numbers use their
// shortest form, so an id decoded as float64(12) becomes "12". It reports
// false for nil and for non-scalar values.
func StringValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	case fmt.Stringer:
		return val.String(), true
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}
