package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed themes/*.css
var bundled embed.FS

// DefaultThemeName is the theme used when none is configured or the
// configured one cannot be found.
const DefaultThemeName = "default"

// Bundled returns the raw CSS of a bundled theme or partial. Imports are
// left unresolved and a ".css" suffix on name is accepted.
func Bundled(name string) (string, bool) {
	file := strings.TrimSuffix(path.Base(name), ".css") + ".css"
	data, err := bundled.ReadFile(path.Join("themes", file))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BundledNames lists the selectable bundled themes in lexical order.
// Partials, whose names start with an underscore, are left out.
func BundledNames() []string {
	matches, _ := fs.Glob(bundled, "themes/[^_]*.css")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".css"))
	}
	return names
}
