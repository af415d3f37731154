package display

import (
	"errors"
	"fmt"
)

// ErrNoDisplay means GTK could not open a display, typically because no
// Wayland or X11 session is reachable.
var ErrNoDisplay = errors.New("no display available")

// DisplayError reports a failure to set up the overlay surface.
type DisplayError struct {
	Stage string
	Err   error
}

func (e *DisplayError) Error() string {
	return fmt.Sprintf("overlay %s: %v", e.Stage, e.Err)
}

func (e *DisplayError) Unwrap() error {
	return e.Err
}
