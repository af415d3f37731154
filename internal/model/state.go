package model

import "fmt"

// Quantity identifies which system value a daemon controls.
type Quantity string

const (
	QuantityBrightness Quantity = "brightness"
	QuantityVolume     Quantity = "volume"
)

// Icon names, looked up in the active icon theme.
const (
	IconBrightnessLow  = "display-brightness-low-symbolic"
	IconBrightnessHigh = "display-brightness-high-symbolic"
	IconVolumeMuted    = "audio-volume-muted"
	IconVolumeLow      = "audio-volume-low"
	IconVolumeMedium   = "audio-volume-medium"
	IconVolumeHigh     = "audio-volume-high"
)

// Reading is the raw value read back from the system after a command.
type Reading struct {
	Level int  `json:"level" yaml:"level"` // percent, may exceed 100 for over-amplified sinks
	Muted bool `json:"muted" yaml:"muted"`
}

// DisplayState is what the overlay shows. It is derived fresh from a Reading
// for every command and never cached.
type DisplayState struct {
	Text     string  `json:"text" yaml:"text"`
	Fraction float64 `json:"fraction" yaml:"fraction"` // 0.0-1.0
	Icon     string  `json:"icon" yaml:"icon"`
	Level    int     `json:"level" yaml:"level"`
	Muted    bool    `json:"muted" yaml:"muted"`
}

// Describe derives the displayed state for a reading of the given quantity.
func Describe(q Quantity, r Reading) DisplayState {
	var icon string
	switch q {
	case QuantityVolume:
		icon = VolumeIcon(r.Level, r.Muted)
	default:
		icon = BrightnessIcon(r.Level)
	}
	return DisplayState{
		Text:     fmt.Sprintf("%d%%", r.Level),
		Fraction: Fraction(r.Level),
		Icon:     icon,
		Level:    r.Level,
		Muted:    r.Muted,
	}
}

// Fraction converts a percentage into a 0..1 bar fill.
func Fraction(level int) float64 {
	switch {
	case level <= 0:
		return 0
	case level >= 100:
		return 1
	}
	return float64(level) / 100
}

// BrightnessIcon selects the brightness icon for a level.
func BrightnessIcon(level int) string {
	if level >= 51 && level <= 100 {
		return IconBrightnessHigh
	}
	return IconBrightnessLow
}

// VolumeIcon selects the volume icon for a level and mute flag. Levels
// outside 0..100 show the muted icon.
func VolumeIcon(level int, muted bool) string {
	switch {
	case muted, level < 0, level > 100:
		return IconVolumeMuted
	case level <= 30:
		return IconVolumeLow
	case level <= 50:
		return IconVolumeMedium
	default:
		return IconVolumeHigh
	}
}

// LevelClass returns the CSS class name for a level band.
func LevelClass(level int) string {
	switch {
	case level <= 30:
		return "level-low"
	case level <= 70:
		return "level-medium"
	default:
		return "level-high"
	}
}
