package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/levelosd/internal/model"
)

// Profile describes the bus identity of one daemon.
type Profile struct {
	Quantity   model.Quantity
	BusName    string
	Path       dbus.ObjectPath
	Interface  string
	ToggleMute bool // whether ToggleMute is exported
}

// BrightnessProfile is the bus identity of brightd.
var BrightnessProfile = Profile{
	Quantity:  model.QuantityBrightness,
	BusName:   "io.github.jmylchreest.levelosd.Brightness",
	Path:      "/io/github/jmylchreest/levelosd/Brightness",
	Interface: "io.github.jmylchreest.levelosd.Brightness",
}

// VolumeProfile is the bus identity of volumed.
var VolumeProfile = Profile{
	Quantity:   model.QuantityVolume,
	BusName:    "io.github.jmylchreest.levelosd.Volume",
	Path:       "/io/github/jmylchreest/levelosd/Volume",
	Interface:  "io.github.jmylchreest.levelosd.Volume",
	ToggleMute: true,
}

// ProfileFor returns the profile for a quantity.
func ProfileFor(q model.Quantity) Profile {
	if q == model.QuantityVolume {
		return VolumeProfile
	}
	return BrightnessProfile
}

// Member returns the fully qualified name of a method or signal.
func (p Profile) Member(name string) string {
	return p.Interface + "." + name
}

// D-Bus error names returned to callers.
const (
	ErrorInvalidArgs  = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrorNotSupported = "org.freedesktop.DBus.Error.NotSupported"
	ErrorFailed       = "org.freedesktop.DBus.Error.Failed"
)

// QueueFullError returns the error name used when the command queue is full.
func (p Profile) QueueFullError() string {
	return p.Interface + ".Error.QueueFull"
}

// ServerInfo is returned by GetServerInformation.
type ServerInfo struct {
	Name      string    `json:"name" yaml:"name"`
	Version   string    `json:"version" yaml:"version"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Handled   uint64    `json:"handled" yaml:"handled"`
}

// State is returned by GetState and carried by StateChanged.
type State struct {
	Level   int    `json:"level" yaml:"level"`
	Muted   bool   `json:"muted" yaml:"muted"`
	Text    string `json:"text" yaml:"text"`
	Icon    string `json:"icon" yaml:"icon"`
	Visible bool   `json:"visible" yaml:"visible"`
}

// StateFromDisplay builds a State from a displayed state.
func StateFromDisplay(ds model.DisplayState, visible bool) State {
	return State{
		Level:   ds.Level,
		Muted:   ds.Muted,
		Text:    ds.Text,
		Icon:    ds.Icon,
		Visible: visible,
	}
}

// TransportError reports a failure to deliver or receive a call over D-Bus.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dbus %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
