package rq

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// truthy reports whether v counts as true for show, if and class toggles:
// false, nil, zero numbers and empty strings are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}

// toDisplayString formats a value for text content: nil is empty, composite
// values are rendered as indented JSON.
func toDisplayString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	rv := reflect.ValueOf(v)
	kind := rv.Kind()
	if kind == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		kind = rv.Elem().Kind()
	}
	switch kind {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if data, err := json.MarshalIndent(v, "", "  "); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

// toString formats a scalar for an attribute or form value.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	return toDisplayString(v)
}

// normalizeClass flattens strings, slices and maps of class name to
// condition into a space separated class list. Map keys are sorted.
func normalizeClass(v any) string {
	var parts []string
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case nil:
		case string:
			parts = append(parts, strings.Fields(x)...)
		case []string:
			for _, s := range x {
				walk(s)
			}
		case []any:
			for _, s := range x {
				walk(s)
			}
		case map[string]bool:
			for _, k := range sortedKeys(x) {
				if x[k] {
					parts = append(parts, k)
				}
			}
		case map[string]any:
			for _, k := range sortedKeys(x) {
				if truthy(x[k]) {
					parts = append(parts, k)
				}
			}
		default:
			if s := toString(v); s != "" {
				parts = append(parts, s)
			}
		}
	}
	walk(v)
	return strings.Join(parts, " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeStyle converts a style value into either a CSS string or a map of
// hyphenated property names to values. Slices of maps are merged in order.
func normalizeStyle(v any) (css string, props map[string]string, isString bool) {
	switch x := v.(type) {
	case nil:
		return "", nil, false
	case string:
		return x, nil, true
	case map[string]string:
		props = make(map[string]string, len(x))
		for k, val := range x {
			props[hyphenate(k)] = val
		}
		return "", props, false
	case map[string]any:
		props = make(map[string]string, len(x))
		for k, val := range x {
			if val == nil {
				continue
			}
			props[hyphenate(k)] = styleValue(val)
		}
		return "", props, false
	case []any:
		props = make(map[string]string)
		for _, item := range x {
			css, sub, isStr := normalizeStyle(item)
			if isStr {
				sub = parseCSS(css)
			}
			for k, val := range sub {
				props[k] = val
			}
		}
		return "", props, false
	}
	return toString(v), nil, true
}

// styleValue formats a style value. A slice applies each entry in turn, so
// the last one wins.
func styleValue(v any) string {
	if list, ok := v.([]string); ok {
		if len(list) == 0 {
			return ""
		}
		return list[len(list)-1]
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		return styleValue(list[len(list)-1])
	}
	return toString(v)
}

func parseCSS(css string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(css, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out
}

// hyphenate turns backgroundColor into background-color. Custom properties
// (--name) are left alone.
func hyphenate(s string) string {
	if strings.HasPrefix(s, "--") {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// kebabToCamel turns initial-count into initialCount.
func kebabToCamel(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// parseAttributeValue converts a prop attribute into a Go value: booleans,
// null, numbers and JSON arrays or objects are decoded, anything else stays
// a string.
func parseAttributeValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "undefined":
		return nil
	}
	if t := strings.TrimSpace(s); t != "" {
		if n, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(n) {
			return n
		}
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}
