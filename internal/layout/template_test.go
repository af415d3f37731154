package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		checkLayout func(t *testing.T, config *LayoutConfig)
	}{
		{
			name:  "flat row",
			input: `<osd><icon /><label /><bar /></osd>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				require.Len(t, config.Elements, 3)
				assert.Equal(t, "horizontal", config.Orientation)
				assert.Equal(t, ElementTypeIcon, config.Elements[0].Type)
				assert.Equal(t, ElementTypeLabel, config.Elements[1].Type)
				assert.Equal(t, ElementTypeBar, config.Elements[2].Type)
			},
		},
		{
			name: "box with orientation attribute",
			input: `<osd orientation="vertical" min-width="120px" min-height="240" spacing="6">
				<box orientation="horizontal">
					<icon />
					<label />
				</box>
				<bar inverted="true" />
			</osd>`,
			checkLayout: func(t *testing.T, config *LayoutConfig) {
				assert.Equal(t, "vertical", config.Orientation)
				assert.Equal(t, 120, config.MinWidth)
				assert.Equal(t, 240, config.MinHeight)
				assert.Equal(t, 6, config.Spacing)
				require.Len(t, config.Elements, 2)

				box := config.Elements[0]
				assert.Equal(t, ElementTypeBox, box.Type)
				assert.Equal(t, "horizontal", box.Attr("orientation", ""))
				require.Len(t, box.Children, 2)
				assert.True(t, config.Elements[1].BoolAttr("inverted"))
				assert.Equal(t, "fallback", config.Elements[1].Attr("halign", "fallback"))
			},
		},
		{
			name:    "unknown element",
			input:   `<osd><summary /></osd>`,
			wantErr: true,
		},
		{
			name:    "wrong root",
			input:   `<popup><icon /></popup>`,
			wantErr: true,
		},
		{
			name:    "bad orientation",
			input:   `<osd orientation="diagonal"><icon /></osd>`,
			wantErr: true,
		},
		{
			name:    "children on leaf",
			input:   `<osd><label><icon /></label></osd>`,
			wantErr: true,
		},
		{
			name:    "empty document",
			input:   ``,
			wantErr: true,
		},
		{
			name:    "malformed",
			input:   `<osd><icon></osd>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseTemplateString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.checkLayout(t, config)
		})
	}
}

func TestBuiltinTemplates(t *testing.T) {
	names := BuiltinNames()
	assert.Equal(t, []string{"compact", "horizontal", "vertical"}, names)

	for _, name := range names {
		config, err := Builtin(name)
		require.NoError(t, err, name)
		assert.True(t, config.Contains(ElementTypeBar), name)
	}

	_, err := Builtin("missing")
	assert.Error(t, err)
}

func TestDefaultLayout(t *testing.T) {
	config := DefaultLayout()
	assert.Equal(t, "horizontal", config.Orientation)
	assert.True(t, config.Contains(ElementTypeIcon))
	assert.True(t, config.Contains(ElementTypeLabel))
	assert.True(t, config.Contains(ElementTypeBar))
	assert.False(t, config.Contains(ElementTypeSpacer))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	custom := `<osd orientation="vertical"><bar /></osd>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.xml"), []byte(custom), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vertical.xml"), []byte(`<osd><icon /></osd>`), 0644))

	loader := NewLoader(dir)

	config, err := loader.Load("mine")
	require.NoError(t, err)
	assert.Equal(t, "vertical", config.Orientation)

	// user templates shadow embedded ones
	config, err = loader.Load("vertical")
	require.NoError(t, err)
	assert.False(t, config.Contains(ElementTypeBar))

	config, err = loader.Load("")
	require.NoError(t, err)
	assert.True(t, config.Contains(ElementTypeLabel))

	_, err = loader.Load("nope")
	assert.Error(t, err)

	config, err = NewLoader("").Load("compact")
	require.NoError(t, err)
	assert.False(t, config.Contains(ElementTypeLabel))
}
