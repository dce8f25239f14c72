// Package storage provides standardized error types for record store operations.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinitionNotFound indicates a workflow definition was not found.
	ErrDefinitionNotFound = errors.New("workflow definition not found")

	// ErrExecutionNotFound indicates an execution record was not found.
	ErrExecutionNotFound = errors.New("workflow execution not found")

	// ErrRuleNotFound indicates an automation rule was not found.
	ErrRuleNotFound = errors.New("automation rule not found")

	// ErrUnknownOperator indicates a filter used an unsupported operator.
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// StoreError wraps record store failures with operation context.
type StoreError struct {
	Op    string // Operation being performed (e.g. "Insert", "Select")
	Table string // Table the operation targeted
	Err   error  // Underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s on table %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a store error with context.
func NewStoreError(op, table string, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Err: err}
}

// IsNotFound checks whether an error indicates a missing record of any kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		errors.Is(err, ErrRuleNotFound)
}
