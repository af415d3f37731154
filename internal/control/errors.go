package control

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for actions a backend cannot perform.
var ErrUnsupported = errors.New("action not supported")

// ErrParse is returned when helper output cannot be understood.
var ErrParse = errors.New("unexpected helper output")

// ExecutionError reports a failed adjustment or state query.
// It is logged per command and never stops the daemon.
type ExecutionError struct {
	Op    string
	Cause error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Op
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func execErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Op: op, Cause: err}
}
