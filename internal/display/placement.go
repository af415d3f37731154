package display

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/levelosd/internal/config"
)

// Anchors describes which screen edges the overlay is pinned to and the
// margin kept from each.
type Anchors struct {
	Top, Bottom, Left, Right bool

	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
}

// anchorsFor maps a configured position to layer-shell anchors.
// Unanchored axes are centered by the compositor, so "center" pins nothing.
func anchorsFor(pos config.Position, offsetX, offsetY int) Anchors {
	var a Anchors
	switch pos {
	case config.PositionTopLeft:
		a.Top, a.Left = true, true
		a.MarginTop, a.MarginLeft = offsetY, offsetX
	case config.PositionTopRight:
		a.Top, a.Right = true, true
		a.MarginTop, a.MarginRight = offsetY, offsetX
	case config.PositionTopCenter:
		a.Top = true
		a.MarginTop = offsetY
	case config.PositionBottomLeft:
		a.Bottom, a.Left = true, true
		a.MarginBottom, a.MarginLeft = offsetY, offsetX
	case config.PositionBottomRight:
		a.Bottom, a.Right = true, true
		a.MarginBottom, a.MarginRight = offsetY, offsetX
	case config.PositionBottomCenter:
		a.Bottom = true
		a.MarginBottom = offsetY
	case config.PositionCenter:
	}
	return a
}

// Placement positions the overlay window and picks its monitor.
type Placement struct {
	config  *config.DaemonConfig
	display *gdk.Display
	logger  *slog.Logger
}

// NewPlacement creates a placement helper for the default display.
func NewPlacement(cfg *config.DaemonConfig, logger *slog.Logger) *Placement {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placement{
		config:  cfg,
		display: gdk.DisplayGetDefault(),
		logger:  logger,
	}
}

// SetConfig swaps the configuration used by Apply.
func (p *Placement) SetConfig(cfg *config.DaemonConfig) {
	p.config = cfg
}

// Apply sets the window's anchors, margins and monitor.
func (p *Placement) Apply(window *gtk.Window) {
	o := p.config.Overlay
	a := anchorsFor(config.Position(o.Position), o.OffsetX, o.OffsetY)

	layershell.SetAnchor(window, layershell.LayerShellEdgeTop, a.Top)
	layershell.SetAnchor(window, layershell.LayerShellEdgeBottom, a.Bottom)
	layershell.SetAnchor(window, layershell.LayerShellEdgeLeft, a.Left)
	layershell.SetAnchor(window, layershell.LayerShellEdgeRight, a.Right)

	layershell.SetMargin(window, layershell.LayerShellEdgeTop, a.MarginTop)
	layershell.SetMargin(window, layershell.LayerShellEdgeBottom, a.MarginBottom)
	layershell.SetMargin(window, layershell.LayerShellEdgeLeft, a.MarginLeft)
	layershell.SetMargin(window, layershell.LayerShellEdgeRight, a.MarginRight)

	if monitor := p.Monitor(); monitor != nil {
		layershell.SetMonitor(window, monitor)
	}
}

// Monitor returns the configured monitor.
// Config values:
// - 0: compositor default (returns nil)
// - 1+: specific monitor (1-indexed)
//
// An out-of-range index falls back to the first monitor.
func (p *Placement) Monitor() *gdk.Monitor {
	if p.display == nil {
		return nil
	}

	monitorNum := p.config.Overlay.Monitor
	if monitorNum == 0 {
		return nil
	}

	monitors := p.display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		p.logger.Warn("no monitors available")
		return nil
	}

	index := uint(monitorNum - 1)
	if index >= monitors.NItems() {
		p.logger.Warn("configured monitor not available, using first",
			"configured", monitorNum,
			"available", monitors.NItems(),
		)
		index = 0
	}

	return wrapMonitor(monitors.Item(index))
}

// HandleMonitorChange refreshes the display after monitors are plugged or
// unplugged.
func (p *Placement) HandleMonitorChange() {
	p.display = gdk.DisplayGetDefault()
	if p.display == nil {
		p.logger.Warn("no display available after monitor change")
		return
	}
	if monitors := p.display.Monitors(); monitors != nil {
		p.logger.Info("monitor configuration changed", "count", monitors.NItems())
	}
}

// wrapMonitor casts a list item to a gdk.Monitor. gotk4 does not export
// its own wrapper, and gdk.Monitor is a struct embedding *glib.Object.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
