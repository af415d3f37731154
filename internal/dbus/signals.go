package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/levelosd/internal/model"
)

// EmitStateChanged emits the StateChanged signal.
func (s *Server) EmitStateChanged(state model.DisplayState) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(s.profile.Path, s.profile.Member("StateChanged"),
		int32(state.Level), state.Muted, state.Text, state.Icon)
	if err != nil {
		return fmt.Errorf("failed to emit StateChanged signal: %w", err)
	}

	s.logger.Debug("emitted StateChanged signal", "text", state.Text, "muted", state.Muted)
	return nil
}

// Observe emits StateChanged after every command the coordinator handles.
func (s *Server) Observe(_ model.Command, state model.DisplayState) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return
	}
	if err := s.EmitStateChanged(state); err != nil {
		s.logger.Warn("failed to emit state change", "error", err)
	}
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}
