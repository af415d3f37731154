// Package dbus exposes the brightness and volume daemons on the session bus.
// The server turns method calls into ordered commands for the coordinator,
// the client is used by brightctl and volumectl, and the watcher follows
// StateChanged signals for status bars.
package dbus
