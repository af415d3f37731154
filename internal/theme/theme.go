package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jmylchreest/levelosd/internal/config"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet with all imports inlined.
type Theme struct {
	Name    string
	Path    string // empty for embedded themes
	CSS     string
	ModTime time.Time
}

// Embedded reports whether the theme was loaded from the binary.
func (t *Theme) Embedded() bool {
	return t.Path == ""
}

// ThemesDir returns the user's themes directory.
func ThemesDir() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "themes")
}

// Resolve finds a theme by name: first in dir, then among the embedded
// themes. An unknown name falls back to the default theme and returns an
// error describing the miss alongside it.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	var userErr error
	if dir != "" {
		p := filepath.Join(dir, name+".css")
		if _, err := os.Stat(p); err == nil {
			t, err := loadFile(name, p)
			if err == nil {
				return t, nil
			}
			userErr = err
		}
	}

	if css, ok := Bundled(name); ok && !strings.HasPrefix(name, "_") {
		return &Theme{Name: name, CSS: ProcessImports(css, "", nil)}, userErr
	}

	css, _ := Bundled(DefaultThemeName)
	fallback := &Theme{Name: DefaultThemeName, CSS: ProcessImports(css, "", nil)}
	if userErr != nil {
		return fallback, userErr
	}
	return fallback, fmt.Errorf("theme %q not found", name)
}

func loadFile(name, p string) (*Theme, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	css, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:    name,
		Path:    p,
		CSS:     ProcessImports(string(css), filepath.Dir(p), nil),
		ModTime: info.ModTime(),
	}, nil
}

// Reload re-reads a file theme. It reports whether the CSS changed.
func (t *Theme) Reload() (bool, error) {
	if t.Embedded() {
		return false, nil
	}
	fresh, err := loadFile(t.Name, t.Path)
	if err != nil {
		return false, err
	}
	changed := fresh.CSS != t.CSS
	t.CSS = fresh.CSS
	t.ModTime = fresh.ModTime
	return changed, nil
}

// ProcessImports inlines @import statements. Relative paths resolve against
// baseDir; anything not found on disk is looked up among the embedded
// themes and partials. seen guards against import cycles.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(stmt string) string {
		m := importRegex.FindStringSubmatch(stmt)
		if len(m) < 2 {
			return stmt
		}
		target := m[1]

		full := target
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, target)
		}
		if seen[full] {
			return "/* circular import skipped: " + target + " */"
		}
		seen[full] = true

		data, err := os.ReadFile(full)
		if err == nil {
			return "/* imported: " + target + " */\n" + ProcessImports(string(data), filepath.Dir(full), seen)
		}

		if embedded, ok := Bundled(target); ok {
			return "/* imported (embedded): " + target + " */\n" + ProcessImports(embedded, "", seen)
		}
		return "/* import failed: " + target + " */"
	})
}

// ListAvailableThemes lists bundled themes followed by user themes that do
// not shadow a bundled name.
func ListAvailableThemes(dir string) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	for _, n := range BundledNames() {
		add(n)
	}

	if dir == "" {
		return names
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, "_") || filepath.Ext(n) != ".css" {
			continue
		}
		add(strings.TrimSuffix(n, ".css"))
	}
	return names
}
