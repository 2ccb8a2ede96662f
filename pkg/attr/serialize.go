package attr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Serialize renders one attribute as `name="value"`, a bare `name`, an
// unquoted `name=value` for booleanish attributes, or the empty string when
// the value means the attribute is absent. Every emitted value is escaped.
func Serialize(name string, value any, kind Kind) string {
	switch kind {
	case Booleanish:
		if value == nil {
			return ""
		}
		if _, ok := Number(value); ok {
			return ""
		}
		return name + "=" + Escape(Stringify(value))

	case Boolean:
		if _, ok := value.(bool); ok {
			return name
		}
		return ""

	case OverloadedBoolean:
		if b, ok := value.(bool); ok && b {
			return name
		}
		if value == nil {
			return ""
		}
		return quoted(name, Stringify(value))

	case PositiveNumeric:
		if n, ok := parseNumber(value); ok && n > 0 {
			return quoted(name, Stringify(value))
		}
		return ""

	case Numeric:
		if _, ok := parseNumber(value); ok {
			return quoted(name, Stringify(value))
		}
		return ""
	}

	if value == nil {
		return ""
	}
	return quoted(name, Stringify(value))
}

func quoted(name, value string) string {
	return name + `="` + Escape(value) + `"`
}

// parseNumber returns the numeric reading of a number or numeric string.
func parseNumber(value any) (float64, bool) {
	if n, ok := Number(value); ok {
		return n, !math.IsNaN(n)
	}
	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// Number reports whether v is a Go numeric value and returns it as float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Stringify converts a value to its text form. nil is the empty string and
// integral floats print without a fraction.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case fmt.Stringer:
		return x.String()
	}
	if n, ok := Number(v); ok {
		return formatFloat(n)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v counts as set: nil, false, zero, NaN and the empty
// string do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := Number(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// ClassList serializes class values: strings are escaped, numbers ignored,
// lists flattened depth-first and map keys kept when their value is truthy.
// Map keys are visited in sorted order.
func ClassList(values ...any) string {
	var parts []string
	parts = appendClasses(parts, values)
	return strings.Join(parts, " ")
}

func appendClasses(parts []string, values []any) []string {
	for _, v := range values {
		if !Truthy(v) {
			continue
		}
		switch x := v.(type) {
		case string:
			parts = append(parts, Escape(x))
		case []any:
			parts = appendClasses(parts, x)
		case []string:
			for _, s := range x {
				if s != "" {
					parts = append(parts, Escape(s))
				}
			}
		case map[string]bool:
			for _, k := range sortedKeys(x) {
				if x[k] {
					parts = append(parts, Escape(k))
				}
			}
		case map[string]any:
			for _, k := range sortedKeys(x) {
				if Truthy(x[k]) {
					parts = append(parts, Escape(k))
				}
			}
		}
	}
	return parts
}

// Style serializes style values: strings are escaped and terminated with a
// semicolon, maps emit `key:value;` for every non-nil entry in sorted key
// order.
func Style(values ...any) string {
	var b strings.Builder
	for _, v := range values {
		switch x := v.(type) {
		case nil:
		case string:
			if x == "" {
				continue
			}
			b.WriteString(Escape(x))
			if !strings.HasSuffix(x, ";") {
				b.WriteByte(';')
			}
		case map[string]string:
			for _, k := range sortedKeys(x) {
				writeDeclaration(&b, k, x[k])
			}
		case map[string]any:
			for _, k := range sortedKeys(x) {
				if x[k] != nil {
					writeDeclaration(&b, k, Stringify(x[k]))
				}
			}
		}
	}
	return b.String()
}

func writeDeclaration(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte(':')
	b.WriteString(Escape(value))
	b.WriteByte(';')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
