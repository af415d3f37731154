// Package daemon wires brightd and volumed together.
//
// A daemon owns one quantity. It builds the executor for the configured
// backend, the coordinator and its surface, the D-Bus server that feeds
// commands in, and the watchers that hot-reload configuration and themes.
// Run drives the whole process and returns its exit code.
package daemon
