package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// StateChangedHandler receives states from StateChanged signals.
type StateChangedHandler func(State)

// Watcher follows a daemon's StateChanged signals.
type Watcher struct {
	conn    *dbus.Conn
	profile Profile
	logger  *slog.Logger

	onState StateChangedHandler
}

// NewWatcher creates a new state watcher.
func NewWatcher(profile Profile, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		profile: profile,
		logger:  logger,
	}
}

// SetStateHandler sets the callback for received states.
func (w *Watcher) SetStateHandler(handler StateChangedHandler) {
	w.onState = handler
}

// Run subscribes to StateChanged and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return &TransportError{Op: "connect", Cause: err}
	}
	w.conn = conn
	defer conn.Close()

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(w.profile.Path),
		dbus.WithMatchInterface(w.profile.Interface),
		dbus.WithMatchMember("StateChanged"),
	)
	if err != nil {
		return &TransportError{Op: "add match", Cause: err}
	}

	ch := make(chan *dbus.Signal, 16)
	conn.Signal(ch)
	defer conn.RemoveSignal(ch)

	w.logger.Debug("watching state changes", "interface", w.profile.Interface)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return &TransportError{Op: "watch", Cause: fmt.Errorf("connection closed")}
			}
			w.handleSignal(sig)
		}
	}
}

// handleSignal parses a StateChanged signal and invokes the handler.
func (w *Watcher) handleSignal(sig *dbus.Signal) {
	if sig.Name != w.profile.Member("StateChanged") {
		return
	}
	st, err := parseStateChanged(sig.Body)
	if err != nil {
		w.logger.Warn("malformed StateChanged signal", "error", err)
		return
	}
	if w.onState != nil {
		w.onState(st)
	}
}

// parseStateChanged decodes StateChanged(level, muted, text, icon).
func parseStateChanged(body []any) (State, error) {
	if len(body) < 4 {
		return State{}, fmt.Errorf("expected 4 arguments, got %d", len(body))
	}

	var (
		st State
		ok bool
	)
	level, ok := body[0].(int32)
	if !ok {
		return State{}, fmt.Errorf("invalid level type %T", body[0])
	}
	st.Level = int(level)
	if st.Muted, ok = body[1].(bool); !ok {
		return State{}, fmt.Errorf("invalid muted type %T", body[1])
	}
	if st.Text, ok = body[2].(string); !ok {
		return State{}, fmt.Errorf("invalid text type %T", body[2])
	}
	if st.Icon, ok = body[3].(string); !ok {
		return State{}, fmt.Errorf("invalid icon type %T", body[3])
	}
	st.Visible = true
	return st, nil
}
