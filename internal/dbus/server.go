package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/levelosd/internal/model"
)

// StateHandler returns the current state for GetState.
type StateHandler func(ctx context.Context) (State, error)

// Server exports a daemon's methods on the session bus and forwards each
// adjustment call, in arrival order, to a buffered command channel.
type Server struct {
	conn    *dbus.Conn
	logger  *slog.Logger
	profile Profile

	commands     chan model.Command
	stateHandler StateHandler
	stateTimeout time.Duration

	accepted atomic.Uint64
	rejected atomic.Uint64

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
	stopCh     chan struct{}
}

// NewServer creates a Server with a command buffer of queueSize.
func NewServer(profile Profile, queueSize int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Server{
		logger:       logger,
		profile:      profile,
		commands:     make(chan model.Command, queueSize),
		stateTimeout: 2 * time.Second,
		serverInfo: ServerInfo{
			Name:      string(profile.Quantity),
			StartedAt: time.Now(),
		},
		stopCh: make(chan struct{}),
	}
}

// Commands returns the channel commands are delivered on.
func (s *Server) Commands() <-chan model.Command {
	return s.commands
}

// SetStateHandler sets the handler used by GetState.
func (s *Server) SetStateHandler(handler StateHandler) {
	s.stateHandler = handler
}

// SetServerInfo sets the name and version reported by GetServerInformation.
func (s *Server) SetServerInfo(name, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo.Name = name
	s.serverInfo.Version = version
}

// Start connects to the session bus, exports the interface and claims the name.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return &TransportError{Op: "connect", Cause: err}
	}
	s.conn = conn

	if err := conn.ExportMethodTable(s.methodTable(), s.profile.Path, s.profile.Interface); err != nil {
		return fmt.Errorf("failed to export methods: %w", err)
	}

	node := &introspect.Node{
		Name: string(s.profile.Path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    s.profile.Interface,
				Methods: s.methods(),
				Signals: stateSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), s.profile.Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(s.profile.BusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return &TransportError{Op: "request name", Cause: err}
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", s.profile.BusName)
	}

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.serverInfo.StartedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "name", s.profile.BusName, "path", s.profile.Path)
	return nil
}

// Stop releases the bus name. Calls arriving afterwards are refused.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false

	if s.conn != nil {
		// unexport so late callers get UnknownMethod rather than a hang
		_ = s.conn.ExportMethodTable(nil, s.profile.Path, s.profile.Interface)
		if _, err := s.conn.ReleaseName(s.profile.BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus server stopped", "accepted", s.accepted.Load(), "rejected", s.rejected.Load())
	return nil
}

// Increase handles the Increase method.
// D-Bus method: Increase(i step)
func (s *Server) Increase(sender dbus.Sender, step int32) *dbus.Error {
	return s.enqueue(sender, model.KindIncrease, step)
}

// Decrease handles the Decrease method.
// D-Bus method: Decrease(i step)
func (s *Server) Decrease(sender dbus.Sender, step int32) *dbus.Error {
	return s.enqueue(sender, model.KindDecrease, step)
}

// ToggleMute handles the ToggleMute method. Only exported by the volume daemon.
// D-Bus method: ToggleMute()
func (s *Server) ToggleMute(sender dbus.Sender) *dbus.Error {
	if !s.profile.ToggleMute {
		return dbus.NewError(ErrorNotSupported, []any{"toggle-mute is not supported for " + string(s.profile.Quantity)})
	}
	return s.enqueue(sender, model.KindToggleMute, 0)
}

// GetState returns the current level and overlay visibility.
// D-Bus method: GetState() -> (ibssb)
func (s *Server) GetState() (int32, bool, string, string, bool, *dbus.Error) {
	if s.stateHandler == nil {
		return 0, false, "", "", false, dbus.NewError(ErrorFailed, []any{"state unavailable"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.stateTimeout)
	defer cancel()

	st, err := s.stateHandler(ctx)
	if err != nil {
		s.logger.Warn("GetState failed", "error", err)
		return 0, false, "", "", false, dbus.NewError(ErrorFailed, []any{err.Error()})
	}
	return int32(st.Level), st.Muted, st.Text, st.Icon, st.Visible, nil
}

// GetServerInformation returns the daemon name, version, start time and
// number of accepted commands.
// D-Bus method: GetServerInformation() -> (ssxt)
func (s *Server) GetServerInformation() (string, string, int64, uint64, *dbus.Error) {
	info := s.Info()
	return info.Name, info.Version, info.StartedAt.Unix(), info.Handled, nil
}

// Info returns a copy of the server information.
func (s *Server) Info() ServerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := s.serverInfo
	info.Handled = s.accepted.Load()
	return info
}

// enqueue converts a call to a command. It never blocks: a full queue is
// reported back to the caller.
func (s *Server) enqueue(sender dbus.Sender, kind model.Kind, step int32) *dbus.Error {
	cmd, err := model.NewCommand(kind, int(step), string(sender))
	if err != nil {
		s.logger.Debug("rejected command", "kind", kind.String(), "step", step, "error", err)
		return dbus.NewError(ErrorInvalidArgs, []any{err.Error()})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.stopCh:
		return dbus.NewError(ErrorFailed, []any{"server stopping"})
	default:
	}

	select {
	case s.commands <- cmd:
		s.accepted.Add(1)
		s.logger.Debug("command received", "command", cmd.String(), "id", cmd.ID, "sender", sender)
		return nil
	default:
		s.rejected.Add(1)
		s.logger.Warn("command queue full, dropping command", "command", cmd.String(), "sender", sender)
		return dbus.NewError(s.profile.QueueFullError(), []any{"command queue full"})
	}
}

// methodTable returns the exported methods for this profile.
func (s *Server) methodTable() map[string]any {
	table := map[string]any{
		"Increase":             s.Increase,
		"Decrease":             s.Decrease,
		"GetState":             s.GetState,
		"GetServerInformation": s.GetServerInformation,
	}
	if s.profile.ToggleMute {
		table["ToggleMute"] = s.ToggleMute
	}
	return table
}

// methods returns the D-Bus method introspection data.
func (s *Server) methods() []introspect.Method {
	methods := []introspect.Method{
		{
			Name: "Increase",
			Args: []introspect.Arg{
				{Name: "step", Type: "i", Direction: "in"},
			},
		},
		{
			Name: "Decrease",
			Args: []introspect.Arg{
				{Name: "step", Type: "i", Direction: "in"},
			},
		},
		{
			Name: "GetState",
			Args: []introspect.Arg{
				{Name: "level", Type: "i", Direction: "out"},
				{Name: "muted", Type: "b", Direction: "out"},
				{Name: "text", Type: "s", Direction: "out"},
				{Name: "icon", Type: "s", Direction: "out"},
				{Name: "visible", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "started_at", Type: "x", Direction: "out"},
				{Name: "handled", Type: "t", Direction: "out"},
			},
		},
	}
	if s.profile.ToggleMute {
		methods = append(methods, introspect.Method{Name: "ToggleMute"})
	}
	return methods
}

// stateSignals returns the D-Bus signal introspection data.
func stateSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "StateChanged",
			Args: []introspect.Arg{
				{Name: "level", Type: "i"},
				{Name: "muted", Type: "b"},
				{Name: "text", Type: "s"},
				{Name: "icon", Type: "s"},
			},
		},
	}
}
