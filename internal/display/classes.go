package display

import (
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/model"
)

// frameClasses are the CSS classes that depend only on configuration.
func frameClasses(q model.Quantity, cfg *config.DaemonConfig, orientation, scheme string) []string {
	classes := []string{"osd-box", string(q), orientation, scheme}
	if cfg.Overlay.Opacity < 1.0 {
		classes = append(classes, "translucent")
	}
	if name := sanitizeClassName(cfg.Theme.Name); name != "" {
		classes = append(classes, "theme-"+name)
	}
	return classes
}

// stateClasses are the CSS classes that follow the displayed value.
func stateClasses(state model.DisplayState) []string {
	classes := []string{model.LevelClass(state.Level)}
	if state.Muted {
		classes = append(classes, "muted")
	}
	if state.Level > 100 {
		classes = append(classes, "over-amplified")
	}
	return classes
}

// colorSchemeClass returns "light" or "dark". systemDark is consulted only
// when the scheme follows the system.
func colorSchemeClass(scheme config.ColorScheme, systemDark func() bool) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	}
	if systemDark != nil && systemDark() {
		return "dark"
	}
	return "light"
}

// systemPrefersDark asks libadwaita for the current system preference.
func systemPrefersDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}

// ApplyColorScheme forces libadwaita to the configured scheme.
func ApplyColorScheme(scheme config.ColorScheme) {
	sm := adw.StyleManagerGetDefault()
	switch scheme {
	case config.ColorSchemeLight:
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	case config.ColorSchemeDark:
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// sanitizeClassName lowercases s and collapses anything that is not a
// letter or digit into single hyphens.
func sanitizeClassName(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		case !hyphen && b.Len() > 0:
			b.WriteRune('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
