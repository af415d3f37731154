// Package control adjusts and reads screen brightness and audio volume by
// invoking the system helpers (brightnessctl, pactl, wpctl).
package control
