package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"
)

// MainLoop schedules work on the GLib main loop that GTK runs on.
// It implements coordinator.Loop.
type MainLoop struct{}

// NewMainLoop returns a loop bound to the default GLib main context.
func NewMainLoop() *MainLoop {
	return &MainLoop{}
}

// Post queues fn to run on the GTK thread. Idle sources of equal priority
// are dispatched in the order they were added.
func (MainLoop) Post(fn func()) {
	glib.IdleAdd(func() {
		fn()
	})
}

// After runs fn once on the GTK thread after d has elapsed.
func (MainLoop) After(d time.Duration, fn func()) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	glib.TimeoutAdd(uint(ms), func() bool {
		fn()
		return false
	})
}
