// Package layout parses XML templates describing the overlay's widget tree.
package layout

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/levelosd/internal/config"
)

// ElementType identifies the type of layout element.
type ElementType string

const (
	ElementTypeIcon   ElementType = "icon"
	ElementTypeLabel  ElementType = "label"
	ElementTypeBar    ElementType = "bar"
	ElementTypeBox    ElementType = "box"
	ElementTypeSpacer ElementType = "spacer"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"icon":   ElementTypeIcon,
	"label":  ElementTypeLabel,
	"bar":    ElementTypeBar,
	"box":    ElementTypeBox,
	"spacer": ElementTypeSpacer,
}

// DefaultTemplate is the template used when none is configured.
const DefaultTemplate = "horizontal"

// LayoutConfig represents the parsed layout structure ready for UI building.
type LayoutConfig struct {
	// Root orientation, "horizontal" or "vertical"
	Orientation string
	Spacing     int
	// Overlay sizing (0 = use config default)
	MinWidth  int
	MinHeight int
	Elements  []LayoutElement
}

// LayoutElement represents a single element in the layout.
type LayoutElement struct {
	Type       ElementType
	Attributes map[string]string
	Children   []LayoutElement
}

// Attr returns an attribute value or def when unset.
func (e LayoutElement) Attr(name, def string) string {
	if v, ok := e.Attributes[name]; ok {
		return v
	}
	return def
}

// BoolAttr reports whether a boolean attribute is "true".
func (e LayoutElement) BoolAttr(name string) bool {
	return strings.EqualFold(e.Attributes[name], "true")
}

// Contains reports whether an element of type t appears anywhere in the layout.
func (c *LayoutConfig) Contains(t ElementType) bool {
	var walk func([]LayoutElement) bool
	walk = func(elems []LayoutElement) bool {
		for _, e := range elems {
			if e.Type == t || walk(e.Children) {
				return true
			}
		}
		return false
	}
	return walk(c.Elements)
}

// ParseTemplate parses an XML layout template from a reader.
func ParseTemplate(r io.Reader) (*LayoutConfig, error) {
	decoder := xml.NewDecoder(r)

	config := LayoutConfig{Orientation: "horizontal"}
	found := false
	for !found {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "osd" {
			return nil, fmt.Errorf("root element must be <osd>, got <%s>", se.Name.Local)
		}
		found = true

		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "orientation":
				if attr.Value != "horizontal" && attr.Value != "vertical" {
					return nil, fmt.Errorf("invalid orientation %q", attr.Value)
				}
				config.Orientation = attr.Value
			case "spacing":
				if v, err := parsePixelValue(attr.Value); err == nil {
					config.Spacing = v
				}
			case "min-width":
				if v, err := parsePixelValue(attr.Value); err == nil {
					config.MinWidth = v
				}
			case "min-height":
				if v, err := parsePixelValue(attr.Value); err == nil {
					config.MinHeight = v
				}
			}
		}

		elements, err := parseElements(decoder)
		if err != nil {
			return nil, err
		}
		config.Elements = elements
	}

	if !found {
		return nil, fmt.Errorf("template has no <osd> element")
	}
	return &config, nil
}

// parsePixelValue parses a pixel value string (e.g., "300", "300px") to int.
func parsePixelValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// parseElements recursively parses child elements.
func parseElements(decoder *xml.Decoder) ([]LayoutElement, error) {
	var elements []LayoutElement

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elemName := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[elemName]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", elemName)
			}

			elem := LayoutElement{
				Type:       elemType,
				Attributes: make(map[string]string),
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value
			}

			children, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			if len(children) > 0 && elemType != ElementTypeBox {
				return nil, fmt.Errorf("element <%s> cannot have children", elemName)
			}
			elem.Children = children

			elements = append(elements, elem)

		case xml.EndElement:
			return elements, nil
		}
	}

	return elements, nil
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*LayoutConfig, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*LayoutConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseTemplate(f)
}

// LayoutsDir returns the directory user templates are read from.
func LayoutsDir() string {
	return filepath.Join(config.ConfigDir(), "layouts")
}

// Loader handles loading layout templates from various sources.
type Loader struct {
	templatesDir string
}

// NewLoader creates a new template loader.
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// Load loads a layout template by name.
// Checks the user directory first, then the embedded templates.
func (l *Loader) Load(name string) (*LayoutConfig, error) {
	if name == "" {
		name = DefaultTemplate
	}

	if l.templatesDir != "" {
		templatePath := filepath.Join(l.templatesDir, name+".xml")
		if _, err := os.Stat(templatePath); err == nil {
			return LoadTemplate(templatePath)
		}
	}

	return Builtin(name)
}

// DefaultLayout returns the built-in horizontal layout.
func DefaultLayout() *LayoutConfig {
	if lay, err := Builtin(DefaultTemplate); err == nil {
		return lay
	}
	return &LayoutConfig{
		Orientation: "horizontal",
		Spacing:     12,
		MinWidth:    300,
		Elements: []LayoutElement{
			{Type: ElementTypeIcon},
			{Type: ElementTypeLabel},
			{Type: ElementTypeBar},
		},
	}
}
