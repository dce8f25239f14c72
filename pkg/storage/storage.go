// Package storage provides the generic record store the engine persists
// through: workflow definitions, execution records and the CRM domain tables
// touched by node side effects.
package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/funilhq/funil/pkg/interpolate"
)

// Filter operators supported by Select and Update.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
)

// Condition is one field/operator/value predicate of a filter.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Filter narrows a table read or update. Conditions are AND-combined.
type Filter struct {
	Conditions []Condition
	Limit      int
}

// Where starts a filter with a single equality predicate.
func Where(field string, value any) Filter {
	return Filter{Conditions: []Condition{{Field: field, Operator: OpEquals, Value: value}}}
}

// And appends a predicate.
func (f Filter) And(field, operator string, value any) Filter {
	f.Conditions = append(f.Conditions, Condition{Field: field, Operator: operator, Value: value})

	return f
}

// WithLimit caps the number of rows returned by Select.
func (f Filter) WithLimit(limit int) Filter {
	f.Limit = limit

	return f
}

// Matches reports whether a row satisfies every condition of the filter.
// Equality compares the string forms of both sides; ordering operators
// require both sides to coerce to numbers.
func (f Filter) Matches(row map[string]any) bool {
	for _, c := range f.Conditions {
		left := interpolate.Stringify(row[c.Field])
		right := interpolate.Stringify(c.Value)

		switch c.Operator {
		case OpEquals:
			if left != right {
				return false
			}
		case OpNotEquals:
			if left == right {
				return false
			}
		case OpGreaterThan:
			if !numericCompare(left, right, func(a, b float64) bool { return a > b }) {
				return false
			}
		case OpLessThan:
			if !numericCompare(left, right, func(a, b float64) bool { return a < b }) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func numericCompare(left, right string, cmp func(a, b float64) bool) bool {
	a, errA := strconv.ParseFloat(strings.TrimSpace(left), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(right), 64)

	if errA != nil || errB != nil {
		return false
	}

	return cmp(a, b)
}

// RecordStore is the storage collaborator consumed by the engine. Rows are
// schemaless JSON objects; implementations must tolerate concurrent writes
// to distinct rows.
type RecordStore interface {
	Insert(ctx context.Context, table string, row map[string]any) (map[string]any, error)
	Update(ctx context.Context, table string, patch map[string]any, filter Filter) error
	Select(ctx context.Context, table string, filter Filter) ([]map[string]any, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// Well-known tables owned by this subsystem.
const (
	TableWorkflowDefinitions = "workflow_definitions"
	TableWorkflowExecutions  = "workflow_executions"
	TableAutomationRules     = "automation_rules"
	TableTasks               = "tasks"
	TableNotifications       = "notifications"
)
