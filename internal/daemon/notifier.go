package daemon

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"
)

// Urgency hint values understood by org.freedesktop.Notifications.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// NotifyFunc delivers one desktop notification.
type NotifyFunc func(summary, body string, urgency byte) error

// Notifier tells the user about daemon events through the desktop's
// notification server, suppressing repeats of the same event.
type Notifier struct {
	mu          sync.Mutex
	logger      *slog.Logger
	notify      NotifyFunc
	minInterval time.Duration
	last        map[string]time.Time
	now         func() time.Time
}

// NewNotifier creates a notifier. A nil notify only logs.
func NewNotifier(notify NotifyFunc, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:      logger,
		notify:      notify,
		minInterval: 5 * time.Second,
		last:        make(map[string]time.Time),
		now:         time.Now,
	}
}

// Notify sends a notification unless one with the same key was sent within
// the minimum interval.
func (n *Notifier) Notify(key, summary, body string, urgency byte) {
	n.mu.Lock()
	if last, ok := n.last[key]; ok && n.now().Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notification rate-limited", "key", key)
		return
	}
	n.last[key] = n.now()
	notify := n.notify
	n.mu.Unlock()

	if notify == nil {
		n.logger.Debug("notification skipped: no handler", "summary", summary)
		return
	}
	if err := notify(summary, body, urgency); err != nil {
		n.logger.Debug("failed to send notification", "summary", summary, "error", err)
	}
}

// NotifyConfigError reports a rejected config reload.
func (n *Notifier) NotifyConfigError(daemon string, err error) {
	n.Notify("config-error", daemon+": configuration error",
		"Keeping the previous configuration: "+err.Error(), UrgencyNormal)
}

// NotifyBackendChanged reports a backend change that needs a restart.
func (n *Notifier) NotifyBackendChanged(daemon, backend string) {
	n.Notify("backend-change", daemon+": restart required",
		fmt.Sprintf("Backend %q takes effect after %s restarts.", backend, daemon), UrgencyLow)
}

// DesktopNotify returns a NotifyFunc calling org.freedesktop.Notifications
// on conn.
func DesktopNotify(conn *godbus.Conn, appName, icon string) NotifyFunc {
	return func(summary, body string, urgency byte) error {
		if conn == nil {
			return fmt.Errorf("not connected to D-Bus")
		}
		obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
		hints := map[string]godbus.Variant{
			"urgency":   godbus.MakeVariant(urgency),
			"transient": godbus.MakeVariant(true),
		}
		call := obj.Call("org.freedesktop.Notifications.Notify", 0,
			appName, uint32(0), icon, summary, body, []string{}, hints, int32(5000))
		return call.Err
	}
}
