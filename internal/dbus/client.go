package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
)

// caller is the subset of dbus.BusObject the client needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Client calls a running daemon.
type Client struct {
	conn    *dbus.Conn
	obj     caller
	profile Profile
	logger  *slog.Logger
}

// NewClient connects to the session bus. The caller must Close the client.
func NewClient(profile Profile, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, &TransportError{Op: "connect", Cause: err}
	}

	return &Client{
		conn:    conn,
		obj:     conn.Object(profile.BusName, profile.Path),
		profile: profile,
		logger:  logger,
	}, nil
}

// Close closes the private bus connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Profile returns the daemon profile the client talks to.
func (c *Client) Profile() Profile {
	return c.profile
}

// Increase asks the daemon to raise the level by step percent.
func (c *Client) Increase(ctx context.Context, step int) error {
	arg, err := stepArg("Increase", step)
	if err != nil {
		return err
	}
	return c.call(ctx, "Increase", arg)
}

// Decrease asks the daemon to lower the level by step percent.
func (c *Client) Decrease(ctx context.Context, step int) error {
	arg, err := stepArg("Decrease", step)
	if err != nil {
		return err
	}
	return c.call(ctx, "Decrease", arg)
}

// stepArg converts step to the int32 the daemon expects.
func stepArg(method string, step int) (int32, error) {
	if step < 0 || step > math.MaxInt32 {
		return 0, fmt.Errorf("%s: step %d out of range 0..%d", method, step, math.MaxInt32)
	}
	return int32(step), nil
}

// ToggleMute asks the daemon to toggle mute.
func (c *Client) ToggleMute(ctx context.Context) error {
	return c.call(ctx, "ToggleMute")
}

// State queries the daemon's current state.
func (c *Client) State(ctx context.Context) (State, error) {
	var (
		level int32
		st    State
	)
	call := c.obj.CallWithContext(ctx, c.profile.Member("GetState"), 0)
	if call.Err != nil {
		return State{}, &TransportError{Op: "GetState", Cause: call.Err}
	}
	if err := call.Store(&level, &st.Muted, &st.Text, &st.Icon, &st.Visible); err != nil {
		return State{}, &TransportError{Op: "GetState", Cause: err}
	}
	st.Level = int(level)
	return st, nil
}

// ServerInformation queries the daemon's identity and counters.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var (
		info    ServerInfo
		started int64
	)
	call := c.obj.CallWithContext(ctx, c.profile.Member("GetServerInformation"), 0)
	if call.Err != nil {
		return ServerInfo{}, &TransportError{Op: "GetServerInformation", Cause: call.Err}
	}
	if err := call.Store(&info.Name, &info.Version, &started, &info.Handled); err != nil {
		return ServerInfo{}, &TransportError{Op: "GetServerInformation", Cause: err}
	}
	info.StartedAt = time.Unix(started, 0)
	return info, nil
}

func (c *Client) call(ctx context.Context, method string, args ...any) error {
	c.logger.Debug("calling daemon", "method", method, "args", args)
	call := c.obj.CallWithContext(ctx, c.profile.Member(method), 0, args...)
	if call.Err != nil {
		return &TransportError{Op: method, Cause: call.Err}
	}
	return nil
}

// IsServiceUnknown reports whether err means the daemon is not running.
func IsServiceUnknown(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown"
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == "org.freedesktop.DBus.Error.ServiceUnknown"
	}
	return false
}
