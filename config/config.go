// Package config loads the rain configuration from defaults, an optional
// YAML file, NEO_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"

	"neo_rain/droplet"
)

var (
	// ErrListRequested is returned by Parse after -list printed the catalog.
	ErrListRequested = errors.New("list options requested")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid configuration")
)

// Default configuration values for the animation.
const (
	defaultFPS       = 30
	defaultColor     = "green"
	defaultCharSet   = "matrix"
	defaultDensity   = 1.0
	defaultSpeedMin  = 4.0
	defaultSpeedMax  = 16.0
	defaultLengthMin = 8
	defaultLengthMax = 20
	defaultLingerMax = time.Second
	defaultDebugFile = "debug.log"
)

const envConfigFile = "NEO_CONFIG"

// Config holds the configuration for the rain animation.
type Config struct {
	FPS       int           `yaml:"fps" env:"NEO_FPS"`
	Color     string        `yaml:"color" env:"NEO_COLOR"` // Theme name or #rrggbb
	Chars     string        `yaml:"chars" env:"NEO_CHARS"` // Char set name or custom string
	Density   float64       `yaml:"density" env:"NEO_DENSITY"`
	SpeedMin  float64       `yaml:"speed_min" env:"NEO_SPEED_MIN"` // Lines per second
	SpeedMax  float64       `yaml:"speed_max" env:"NEO_SPEED_MAX"`
	LengthMin int           `yaml:"length_min" env:"NEO_LENGTH_MIN"`
	LengthMax int           `yaml:"length_max" env:"NEO_LENGTH_MAX"`
	LingerMin time.Duration `yaml:"linger_min" env:"NEO_LINGER_MIN"`
	LingerMax time.Duration `yaml:"linger_max" env:"NEO_LINGER_MAX"`
	Shading   string        `yaml:"shading" env:"NEO_SHADING"`     // random, distance
	ColorMode string        `yaml:"colormode" env:"NEO_COLORMODE"` // auto, mono, 16, 256, truecolor
	Backend   string        `yaml:"backend" env:"NEO_BACKEND"`     // ansi, tcell
	LogLevel  string        `yaml:"log_level" env:"NEO_LOG_LEVEL"`
	LogFormat string        `yaml:"log_format" env:"NEO_LOG_FORMAT"`
	Debug     bool          `yaml:"debug" env:"NEO_DEBUG"`
	DebugFile string        `yaml:"debug_file" env:"NEO_DEBUG_FILE"`
	File      string        `yaml:"-"`

	charSet   []rune
	baseColor colorful.Color
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FPS:       defaultFPS,
		Color:     defaultColor,
		Chars:     defaultCharSet,
		Density:   defaultDensity,
		SpeedMin:  defaultSpeedMin,
		SpeedMax:  defaultSpeedMax,
		LengthMin: defaultLengthMin,
		LengthMax: defaultLengthMax,
		LingerMax: defaultLingerMax,
		Shading:   "random",
		ColorMode: "auto",
		Backend:   "ansi",
		LogLevel:  "info",
		LogFormat: "text",
		DebugFile: defaultDebugFile,
	}
}

// Parser turns files, environment and flags into a Config.
type Parser struct {
	configData ConfigData
	out        io.Writer         // -list and usage output
	environ    map[string]string // nil reads the process environment
}

// NewParser creates a Parser with the given ConfigData.
func NewParser(configData ConfigData, out io.Writer) *Parser {
	return &Parser{configData: configData, out: out}
}

// WithEnviron makes the parser read variables from environ instead of the
// process environment.
func (p *Parser) WithEnviron(environ map[string]string) *Parser {
	p.environ = environ
	return p
}

// Parse processes args and returns a validated Config.
func (p *Parser) Parse(args []string) (*Config, error) {
	flagged := Default()
	fs, list := p.flagSet(&flagged, p.out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *list {
		return nil, p.listOptions()
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Default()
	path, _ := p.lookupEnv(envConfigFile)
	if set["config"] {
		path = flagged.File
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: p.environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Flags given on the command line win over file and environment
	over, _ := p.flagSet(&cfg, io.Discard)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if err := over.Set(f.Name, f.Value.String()); err != nil && setErr == nil {
			setErr = err
		}
	})
	if setErr != nil {
		return nil, setErr
	}
	cfg.File = path

	if err := cfg.Validate(p.configData); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (p *Parser) flagSet(cfg *Config, out io.Writer) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet("neo", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames per second (1-60)")
	fs.StringVar(&cfg.Color, "color", cfg.Color, "color theme (green, amber, red, etc.) or #rrggbb")
	fs.StringVar(&cfg.Chars, "chars", cfg.Chars, "character set name or custom string")
	fs.Float64Var(&cfg.Density, "density", cfg.Density, "droplet density (0.1-3.0)")
	fs.Float64Var(&cfg.SpeedMin, "speed-min", cfg.SpeedMin, "slowest droplet in lines per second")
	fs.Float64Var(&cfg.SpeedMax, "speed-max", cfg.SpeedMax, "fastest droplet in lines per second")
	fs.IntVar(&cfg.LengthMin, "length-min", cfg.LengthMin, "shortest droplet")
	fs.IntVar(&cfg.LengthMax, "length-max", cfg.LengthMax, "longest droplet")
	fs.DurationVar(&cfg.LingerMin, "linger-min", cfg.LingerMin, "shortest pause before a stopped droplet collapses")
	fs.DurationVar(&cfg.LingerMax, "linger-max", cfg.LingerMax, "longest pause before a stopped droplet collapses")
	fs.StringVar(&cfg.Shading, "shading", cfg.Shading, "shading mode (random, distance)")
	fs.StringVar(&cfg.ColorMode, "colormode", cfg.ColorMode, "color mode (auto, mono, 16, 256, truecolor)")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "display backend (ansi, tcell)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "write logs to the debug file")
	fs.StringVar(&cfg.DebugFile, "debug-file", cfg.DebugFile, "debug log path")
	fs.StringVar(&cfg.File, "config", cfg.File, "YAML config file")
	list := fs.Bool("list", false, "list available options")
	return fs, list
}

func (p *Parser) lookupEnv(key string) (string, bool) {
	if p.environ != nil {
		v, ok := p.environ[key]
		return v, ok
	}
	return os.LookupEnv(key)
}

// listOptions prints available options and returns ErrListRequested.
func (p *Parser) listOptions() error {
	fmt.Fprintln(p.out, "Available options:")
	fmt.Fprintln(p.out, "Colors:")
	for _, name := range slices.Sorted(maps.Keys(p.configData.ColorThemes)) {
		fmt.Fprintln(p.out, "  ", name)
	}
	fmt.Fprintln(p.out, "\nCharacter Sets:")
	for _, name := range slices.Sorted(maps.Keys(p.configData.CharSets)) {
		fmt.Fprintln(p.out, "  ", name)
	}
	fmt.Fprintln(p.out, "\nFPS: 1-60")
	fmt.Fprintln(p.out, "Density: 0.1-3.0")
	fmt.Fprintln(p.out, "Shading: random, distance")
	fmt.Fprintln(p.out, "Color modes: auto, mono, 16, 256, truecolor")
	fmt.Fprintln(p.out, "Backends: ansi, tcell")
	return ErrListRequested
}

// loadFile reads YAML from path over cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for validity and resolves the color
// theme and character set.
func (c *Config) Validate(data ConfigData) error {
	if c.FPS < 1 || c.FPS > 60 {
		return fmt.Errorf("%w: fps out of range (1-60): got %d", ErrInvalid, c.FPS)
	}
	if c.Density < 0.1 || c.Density > 3.0 {
		return fmt.Errorf("%w: density out of range (0.1-3.0): got %.1f", ErrInvalid, c.Density)
	}
	if c.SpeedMin <= 0 || c.SpeedMax < c.SpeedMin {
		return fmt.Errorf("%w: invalid speed range %.1f-%.1f", ErrInvalid, c.SpeedMin, c.SpeedMax)
	}
	if c.LengthMin <= 0 || c.LengthMax < c.LengthMin {
		return fmt.Errorf("%w: invalid droplet length range %d-%d", ErrInvalid, c.LengthMin, c.LengthMax)
	}
	if c.LingerMin < 0 || c.LingerMax < c.LingerMin {
		return fmt.Errorf("%w: invalid linger range %s-%s", ErrInvalid, c.LingerMin, c.LingerMax)
	}
	if _, err := c.ShadingMode(); err != nil {
		return err
	}
	if _, _, err := c.ColorSetting(); err != nil {
		return err
	}
	if c.Backend != "ansi" && c.Backend != "tcell" {
		return fmt.Errorf("%w: unknown backend: %s", ErrInvalid, c.Backend)
	}
	if c.Debug && c.DebugFile == "" {
		return fmt.Errorf("%w: debug requires a debug file", ErrInvalid)
	}

	base, err := resolveColor(data, c.Color)
	if err != nil {
		return err
	}
	charSet, err := resolveCharSet(data, c.Chars)
	if err != nil {
		return err
	}
	c.baseColor, c.charSet = base, charSet
	return nil
}

// CharSet returns the resolved glyphs. Valid after Validate.
func (c *Config) CharSet() []rune { return c.charSet }

// BaseColor returns the resolved theme color. Valid after Validate.
func (c *Config) BaseColor() colorful.Color { return c.baseColor }

// ShadingMode maps the shading name to a droplet.ShadingMode.
func (c *Config) ShadingMode() (droplet.ShadingMode, error) {
	switch strings.ToLower(c.Shading) {
	case "random":
		return droplet.ShadingRandom, nil
	case "distance":
		return droplet.ShadingDistanceFromHead, nil
	}
	return 0, fmt.Errorf("%w: unknown shading mode: %s", ErrInvalid, c.Shading)
}

// ColorSetting maps the color mode name; auto is true when the mode should
// be detected from the terminal.
func (c *Config) ColorSetting() (mode droplet.ColorMode, auto bool, err error) {
	switch strings.ToLower(c.ColorMode) {
	case "auto":
		return droplet.ColorTrue, true, nil
	case "mono":
		return droplet.ColorMono, false, nil
	case "16":
		return droplet.Color16, false, nil
	case "256":
		return droplet.Color256, false, nil
	case "truecolor":
		return droplet.ColorTrue, false, nil
	}
	return 0, false, fmt.Errorf("%w: unknown color mode: %s", ErrInvalid, c.ColorMode)
}

func resolveColor(data ConfigData, name string) (colorful.Color, error) {
	hex, ok := data.ColorThemes[strings.ToLower(name)]
	if !ok {
		if !strings.HasPrefix(name, "#") {
			return colorful.Color{}, fmt.Errorf("%w: unknown color theme: %s", ErrInvalid, name)
		}
		hex = name
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: bad color %s: %v", ErrInvalid, hex, err)
	}
	return c, nil
}

// resolveCharSet converts a character set name or string to single-cell
// glyphs. Wide glyphs would spill into the neighboring column.
func resolveCharSet(data ConfigData, name string) ([]rune, error) {
	s, ok := data.CharSets[strings.ToLower(name)]
	if !ok {
		s = name
	}
	var out []rune
	for _, r := range s {
		if uniseg.StringWidth(string(r)) == 1 {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: character set has no single-width glyphs: %q", ErrInvalid, name)
	}
	return out, nil
}
