package daemon

import "fmt"

// InitializationError reports a fatal startup failure.
type InitializationError struct {
	Component string
	Cause     error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Cause)
}

func (e *InitializationError) Unwrap() error {
	return e.Cause
}
