package schema

import (
	"errors"
	"fmt"
)

// ValidationError represents a single definition validation failure.
type ValidationError struct {
	ID     int    // Definition id
	Name   string // Definition name
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("definition %d: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("definition %d (%s): %s", e.ID, e.Name, e.Reason)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err wraps an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
