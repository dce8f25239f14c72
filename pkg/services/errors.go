// Package services holds the business operations the API and CLI expose:
// definition management, manual runs, execution inspection and the
// collaborators (email, notifications) the node executors depend on.
package services

import (
	"errors"
	"fmt"
)

// Client-caused errors. Handlers map these to 4xx responses.
var (
	ErrInvalidDefinition   = errors.New("invalid workflow definition")
	ErrExecutionTerminal   = errors.New("execution already finished")
	ErrRetryCancelled      = errors.New("cancelled executions cannot be retried")
	ErrExecutionRunning    = errors.New("execution is still running")
	ErrInactiveWorkflow    = errors.New("workflow is not active")
	ErrUnknownTriggerEvent = errors.New("event name is required for event triggers")
)

// ServiceError carries the failing operation alongside the cause.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{Op: op, Err: err}
}
