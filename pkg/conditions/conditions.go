// Package conditions evaluates field/operator/value predicates against
// execution variables. It is shared by condition nodes, trigger conditions
// and the flat automation-rule engine.
package conditions

import (
	"strconv"
	"strings"

	"github.com/funilhq/funil/pkg/interpolate"
)

// Supported operators. An unrecognized operator evaluates to false.
const (
	OperatorEquals             = "equals"
	OperatorNotEquals          = "not_equals"
	OperatorGreaterThan        = "greater_than"
	OperatorLessThan           = "less_than"
	OperatorGreaterThanOrEqual = "greater_than_or_equal"
	OperatorLessThanOrEqual    = "less_than_or_equal"
	OperatorContains           = "contains"
	OperatorNotContains        = "not_contains"
	OperatorStartsWith         = "starts_with"
	OperatorEndsWith           = "ends_with"
	OperatorIsEmpty            = "is_empty"
	OperatorIsNotEmpty         = "is_not_empty"
)

// Evaluate resolves field against the variables, resolves value (so a
// condition can compare two variables) and applies the operator. It never
// errors: anything it cannot make sense of evaluates to false.
func Evaluate(field, operator string, value any, variables map[string]any) bool {
	left := resolveField(field, variables)
	right := resolveValue(value, variables)

	switch operator {
	case OperatorEquals:
		return strings.EqualFold(left, right)
	case OperatorNotEquals:
		return !strings.EqualFold(left, right)
	case OperatorGreaterThan:
		return compareNumeric(left, right, func(a, b float64) bool { return a > b })
	case OperatorLessThan:
		return compareNumeric(left, right, func(a, b float64) bool { return a < b })
	case OperatorGreaterThanOrEqual:
		return compareNumeric(left, right, func(a, b float64) bool { return a >= b })
	case OperatorLessThanOrEqual:
		return compareNumeric(left, right, func(a, b float64) bool { return a <= b })
	case OperatorContains:
		return strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case OperatorNotContains:
		return !strings.Contains(strings.ToLower(left), strings.ToLower(right))
	case OperatorStartsWith:
		return strings.HasPrefix(strings.ToLower(left), strings.ToLower(right))
	case OperatorEndsWith:
		return strings.HasSuffix(strings.ToLower(left), strings.ToLower(right))
	case OperatorIsEmpty:
		return isEmpty(left)
	case OperatorIsNotEmpty:
		return !isEmpty(left)
	default:
		return false
	}
}

// All reports whether every predicate holds. An empty list holds trivially.
func All(conditions []Condition, variables map[string]any) bool {
	for _, c := range conditions {
		if !Evaluate(c.Field, c.Operator, c.Value, variables) {
			return false
		}
	}

	return true
}

// Condition is the generic predicate shape accepted by All.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

func resolveField(field string, variables map[string]any) string {
	value, ok := interpolate.Lookup(variables, field)
	if !ok {
		return ""
	}

	return interpolate.Stringify(value)
}

func resolveValue(value any, variables map[string]any) string {
	if s, ok := value.(string); ok {
		return interpolate.Resolve(s, variables)
	}

	return interpolate.Stringify(value)
}

func compareNumeric(left, right string, cmp func(a, b float64) bool) bool {
	a, errA := strconv.ParseFloat(strings.TrimSpace(left), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(right), 64)

	if errA != nil || errB != nil {
		return false
	}

	return cmp(a, b)
}

func isEmpty(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "null", "undefined":
		return true
	default:
		return false
	}
}
