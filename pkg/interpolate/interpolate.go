// Package interpolate resolves {{dotted.path}} placeholders against
// execution-scoped variables.
package interpolate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// Resolve replaces every {{a.b.c}} token in input with the string form of
// the value found by walking variables along the dotted path. Unresolvable
// tokens are left untouched: a missing variable must never abort a run.
func Resolve(input string, variables map[string]any) string {
	if input == "" || !strings.Contains(input, "{{") {
		return input
	}

	return placeholderPattern.ReplaceAllStringFunc(input, func(token string) string {
		path := placeholderPattern.FindStringSubmatch(token)[1]

		value, ok := Lookup(variables, path)
		if !ok || value == nil {
			return token
		}

		return Stringify(value)
	})
}

// Lookup walks variables along a dot-separated path. The second return is
// false when any segment is missing, not a map, or resolves to nil.
func Lookup(variables map[string]any, path string) (any, bool) {
	var current any = variables

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok || current == nil {
			return nil, false
		}
	}

	return current, true
}

// Stringify renders a resolved value for substitution into text.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		if encoded, err := json.Marshal(v); err == nil {
			return string(encoded)
		}

		return fmt.Sprintf("%v", v)
	}
}
