package layout

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.xml
var builtin embed.FS

// Builtin parses the bundled layout called name (without extension).
func Builtin(name string) (*LayoutConfig, error) {
	data, err := builtin.ReadFile(path.Join("templates", name+".xml"))
	if err != nil {
		return nil, fmt.Errorf("no built-in layout %q", name)
	}
	lay, err := ParseTemplateString(string(data))
	if err != nil {
		return nil, fmt.Errorf("built-in layout %q: %w", name, err)
	}
	return lay, nil
}

// BuiltinNames lists the bundled layouts in lexical order.
func BuiltinNames() []string {
	matches, _ := fs.Glob(builtin, "templates/*.xml")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".xml"))
	}
	return names
}
