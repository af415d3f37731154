// Package display renders the on-screen overlay with GTK4, libadwaita and
// Wayland layer-shell.
//
// An Overlay owns a single borderless layer-shell window built from a layout
// template. It implements the coordinator's Surface: Show presents the
// window, Update refreshes the icon, label and bar widgets, and Hide unmaps
// it. MainLoop adapts the GLib main loop to the coordinator's Loop so every
// surface call happens on the GTK thread.
//
// LogSurface is a window-less Surface used when running headless.
package display
