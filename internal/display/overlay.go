package display

import (
	"log/slog"
	"strconv"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/layout"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Overlay is the on-screen display window. All methods must be called on
// the GTK main thread.
type Overlay struct {
	app       *gtk.Application
	quantity  model.Quantity
	config    *config.DaemonConfig
	layout    *layout.LayoutConfig
	placement *Placement
	logger    *slog.Logger

	window *gtk.Window
	box    *gtk.Box
	icons  []*gtk.Image
	labels []*gtk.Label
	bars   []*gtk.ProgressBar

	dynamic []string // state classes currently on box
	last    model.DisplayState
	hasLast bool
	visible bool
}

// NewOverlay creates the overlay window. The window starts hidden.
func NewOverlay(app *gtk.Application, q model.Quantity, cfg *config.DaemonConfig, lay *layout.LayoutConfig, logger *slog.Logger) (*Overlay, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if gdk.DisplayGetDefault() == nil {
		return nil, &DisplayError{Stage: "open", Err: ErrNoDisplay}
	}
	if lay == nil {
		lay = layout.DefaultLayout()
	}

	o := &Overlay{
		app:       app,
		quantity:  q,
		config:    cfg,
		layout:    lay,
		placement: NewPlacement(cfg, logger),
		logger:    logger.With("component", "overlay"),
	}

	o.window = gtk.NewWindow()
	o.window.SetApplication(app)
	o.window.SetDecorated(false)
	o.window.SetResizable(false)
	o.window.AddCSSClass("osd-window")

	layershell.InitForWindow(o.window)
	layershell.SetLayer(o.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(o.window, 0)
	layershell.SetKeyboardMode(o.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(o.window, "levelosd-"+string(q))

	if monitors := gdk.DisplayGetDefault().Monitors(); monitors != nil {
		monitors.ConnectItemsChanged(func(_, _, _ uint) {
			o.HandleMonitorChange()
		})
	}

	o.build()
	return o, nil
}

// Show maps the window.
func (o *Overlay) Show() {
	o.placement.Apply(o.window)
	o.window.Present()
	o.visible = true
}

// Update refreshes every widget with state.
func (o *Overlay) Update(state model.DisplayState) {
	o.last = state
	o.hasLast = true
	o.render()
}

// Hide unmaps the window.
func (o *Overlay) Hide() {
	o.window.SetVisible(false)
	o.visible = false
}

// Visible reports whether the window is currently mapped.
func (o *Overlay) Visible() bool {
	return o.visible
}

// ApplyConfig switches to new settings and layout without losing the
// displayed value or visibility.
func (o *Overlay) ApplyConfig(cfg *config.DaemonConfig, lay *layout.LayoutConfig) {
	if lay == nil {
		lay = o.layout
	}
	o.config = cfg
	o.layout = lay
	o.placement.SetConfig(cfg)
	o.build()
	if o.visible {
		o.placement.Apply(o.window)
	}
	o.logger.Debug("overlay reconfigured", "position", cfg.Overlay.Position, "orientation", lay.Orientation)
}

// HandleMonitorChange re-applies placement after monitors change.
func (o *Overlay) HandleMonitorChange() {
	o.placement.HandleMonitorChange()
	if o.visible {
		o.placement.Apply(o.window)
	}
}

// Close destroys the window.
func (o *Overlay) Close() {
	o.window.Destroy()
}

// build (re)creates the widget tree from the layout.
func (o *Overlay) build() {
	o.icons, o.labels, o.bars = nil, nil, nil
	o.dynamic = nil

	o.box = gtk.NewBox(orientationFor(o.layout.Orientation), o.layout.Spacing)
	o.box.SetMarginTop(10)
	o.box.SetMarginBottom(10)
	o.box.SetMarginStart(14)
	o.box.SetMarginEnd(14)

	scheme := colorSchemeClass(config.ColorScheme(o.config.Theme.ColorScheme), systemPrefersDark)
	for _, class := range frameClasses(o.quantity, o.config, o.layout.Orientation, scheme) {
		o.box.AddCSSClass(class)
	}

	for _, elem := range o.layout.Elements {
		if w := o.buildElement(elem); w != nil {
			o.box.Append(w)
		}
	}

	width := o.layout.MinWidth
	if width == 0 {
		width = o.config.Overlay.Width
	}
	o.window.SetSizeRequest(width, o.layout.MinHeight)
	o.window.SetOpacity(o.config.Overlay.Opacity)
	o.window.SetChild(o.box)

	if o.hasLast {
		o.render()
	}
}

// render copies the last state into the widgets.
func (o *Overlay) render() {
	state := o.last
	for _, img := range o.icons {
		img.SetFromIconName(state.Icon)
	}
	for _, lbl := range o.labels {
		lbl.SetText(state.Text)
	}
	for _, bar := range o.bars {
		bar.SetFraction(state.Fraction)
	}

	for _, class := range o.dynamic {
		o.box.RemoveCSSClass(class)
	}
	o.dynamic = stateClasses(state)
	for _, class := range o.dynamic {
		o.box.AddCSSClass(class)
	}
}

// buildElement builds a GTK widget from a layout element.
func (o *Overlay) buildElement(elem layout.LayoutElement) gtk.Widgetter {
	var w gtk.Widgetter
	switch elem.Type {
	case layout.ElementTypeIcon:
		w = o.buildIcon(elem)
	case layout.ElementTypeLabel:
		w = o.buildLabel(elem)
	case layout.ElementTypeBar:
		w = o.buildBar(elem)
	case layout.ElementTypeBox:
		w = o.buildBox(elem)
	case layout.ElementTypeSpacer:
		spacer := gtk.NewBox(gtk.OrientationHorizontal, 0)
		spacer.SetHExpand(true)
		w = spacer
	default:
		return nil
	}

	base := gtk.BaseWidget(w)
	if elem.BoolAttr("hexpand") {
		base.SetHExpand(true)
	}
	if elem.BoolAttr("vexpand") {
		base.SetVExpand(true)
	}
	if v, ok := elem.Attributes["halign"]; ok {
		base.SetHAlign(alignFor(v))
	}
	if v, ok := elem.Attributes["valign"]; ok {
		base.SetVAlign(alignFor(v))
	}
	if class := elem.Attr("class", ""); class != "" {
		base.AddCSSClass(class)
	}
	return w
}

func (o *Overlay) buildIcon(elem layout.LayoutElement) gtk.Widgetter {
	img := gtk.NewImage()
	img.AddCSSClass("osd-icon")
	img.SetPixelSize(attrInt(elem, "size", o.config.Overlay.IconSize))
	o.icons = append(o.icons, img)
	return img
}

func (o *Overlay) buildLabel(elem layout.LayoutElement) gtk.Widgetter {
	lbl := gtk.NewLabel("")
	lbl.AddCSSClass("osd-label")
	lbl.SetWidthChars(attrInt(elem, "width-chars", 4))
	o.labels = append(o.labels, lbl)
	return lbl
}

func (o *Overlay) buildBar(elem layout.LayoutElement) gtk.Widgetter {
	bar := gtk.NewProgressBar()
	bar.AddCSSClass("osd-bar")
	if elem.Attr("orientation", "horizontal") == "vertical" {
		bar.SetOrientation(gtk.OrientationVertical)
		bar.AddCSSClass("vertical")
	} else {
		bar.SetHExpand(true)
	}
	bar.SetInverted(elem.BoolAttr("inverted"))
	o.bars = append(o.bars, bar)
	return bar
}

func (o *Overlay) buildBox(elem layout.LayoutElement) gtk.Widgetter {
	box := gtk.NewBox(orientationFor(elem.Attr("orientation", "horizontal")), attrInt(elem, "spacing", 4))
	for _, child := range elem.Children {
		if w := o.buildElement(child); w != nil {
			box.Append(w)
		}
	}
	return box
}

func orientationFor(s string) gtk.Orientation {
	if s == "vertical" {
		return gtk.OrientationVertical
	}
	return gtk.OrientationHorizontal
}

func alignFor(s string) gtk.Align {
	switch s {
	case "start":
		return gtk.AlignStart
	case "end":
		return gtk.AlignEnd
	case "center":
		return gtk.AlignCenter
	default:
		return gtk.AlignFill
	}
}

// attrInt reads an integer attribute, accepting an optional "px" suffix.
func attrInt(elem layout.LayoutElement, name string, def int) int {
	v, ok := elem.Attributes[name]
	if !ok {
		return def
	}
	if len(v) > 2 && v[len(v)-2:] == "px" {
		v = v[:len(v)-2]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
