package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neo_rain/droplet"
)

func newTestParser(environ map[string]string) (*Parser, *bytes.Buffer) {
	var out bytes.Buffer
	return NewParser(DefaultConfigData, &out).WithEnviron(environ), &out
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParse_Defaults(t *testing.T) {
	p, _ := newTestParser(map[string]string{})

	cfg, err := p.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "ansi", cfg.Backend)
	assert.NotEmpty(t, cfg.CharSet())
	assert.True(t, cfg.BaseColor().AlmostEqualRgb(colorful.Color{G: 1}))
	assert.Empty(t, cfg.File)
}

func TestParse_Precedence(t *testing.T) {
	path := writeFile(t, "fps: 20\ndensity: 1.5\ncolor: amber\nlinger_max: 2s\n")
	p, _ := newTestParser(map[string]string{
		"NEO_CONFIG": path,
		"NEO_FPS":    "25",
	})

	cfg, err := p.Parse([]string{"-density", "2.5"})
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.FPS, "environment beats file")
	assert.Equal(t, 2.5, cfg.Density, "flag beats file")
	assert.Equal(t, "amber", cfg.Color, "file beats default")
	assert.Equal(t, 2*time.Second, cfg.LingerMax)
	assert.Equal(t, path, cfg.File)
}

func TestParse_FlagBeatsEnvironment(t *testing.T) {
	p, _ := newTestParser(map[string]string{"NEO_FPS": "25", "NEO_SHADING": "distance"})

	cfg, err := p.Parse([]string{"-fps", "50"})
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.FPS)
	mode, err := cfg.ShadingMode()
	require.NoError(t, err)
	assert.Equal(t, droplet.ShadingDistanceFromHead, mode)
}

func TestParse_ConfigFlagBeatsEnvironmentPath(t *testing.T) {
	envPath := writeFile(t, "fps: 10\n")
	flagPath := writeFile(t, "fps: 40\n")
	p, _ := newTestParser(map[string]string{"NEO_CONFIG": envPath})

	cfg, err := p.Parse([]string{"-config", flagPath})
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.FPS)
	assert.Equal(t, flagPath, cfg.File)
}

func TestParse_List(t *testing.T) {
	p, out := newTestParser(map[string]string{})

	_, err := p.Parse([]string{"-list"})
	assert.ErrorIs(t, err, ErrListRequested)
	assert.Contains(t, out.String(), "green")
	assert.Contains(t, out.String(), "matrix")
}

func TestParse_Help(t *testing.T) {
	p, _ := newTestParser(map[string]string{})

	_, err := p.Parse([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		args    []string
		invalid bool
	}{
		{"fps too high", nil, []string{"-fps", "61"}, true},
		{"density too low", nil, []string{"-density", "0.05"}, true},
		{"speed range inverted", nil, []string{"-speed-min", "10", "-speed-max", "5"}, true},
		{"length zero", nil, []string{"-length-min", "0"}, true},
		{"linger inverted", nil, []string{"-linger-min", "2s", "-linger-max", "1s"}, true},
		{"unknown color", nil, []string{"-color", "mauve"}, true},
		{"bad hex", nil, []string{"-color", "#zzzzzz"}, true},
		{"unknown shading", nil, []string{"-shading", "sideways"}, true},
		{"unknown color mode", map[string]string{"NEO_COLORMODE": "88"}, nil, true},
		{"unknown backend", nil, []string{"-backend", "sdl"}, true},
		{"only wide glyphs", nil, []string{"-chars", "日本"}, true},
		{"bad env value", map[string]string{"NEO_FPS": "fast"}, nil, false},
		{"missing file", map[string]string{"NEO_CONFIG": "/nonexistent/neo.yaml"}, nil, false},
		{"bad flag", nil, []string{"-fps", "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			p, _ := newTestParser(environ)

			_, err := p.Parse(tt.args)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	path := writeFile(t, "fps: [1, 2\n")
	p, _ := newTestParser(map[string]string{})

	_, err := p.Parse([]string{"-config", path})
	assert.Error(t, err)
}

func TestValidate_HexColor(t *testing.T) {
	cfg := Default()
	cfg.Color = "#123456"
	require.NoError(t, cfg.Validate(DefaultConfigData))

	want, err := colorful.Hex("#123456")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.BaseColor())
}

func TestValidate_CustomCharSetDropsWideGlyphs(t *testing.T) {
	cfg := Default()
	cfg.Chars = "ab日c"
	require.NoError(t, cfg.Validate(DefaultConfigData))
	assert.Equal(t, []rune("abc"), cfg.CharSet())
}

func TestValidate_CatalogCharSetsAreSingleWidth(t *testing.T) {
	for name, chars := range DefaultConfigData.CharSets {
		cfg := Default()
		cfg.Chars = name
		require.NoError(t, cfg.Validate(DefaultConfigData), name)
		assert.Equal(t, []rune(chars), cfg.CharSet(), name)
	}
}

func TestColorSetting(t *testing.T) {
	tests := []struct {
		in   string
		mode droplet.ColorMode
		auto bool
	}{
		{"auto", droplet.ColorTrue, true},
		{"mono", droplet.ColorMono, false},
		{"16", droplet.Color16, false},
		{"256", droplet.Color256, false},
		{"TrueColor", droplet.ColorTrue, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := Config{ColorMode: tt.in}
			mode, auto, err := cfg.ColorSetting()
			require.NoError(t, err)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.auto, auto)
		})
	}
}
