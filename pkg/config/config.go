package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"logo_go/pkg/codegen"
	"logo_go/pkg/eval"
)

// Config holds everything a run needs besides the program text
type Config struct {
	Path    string     `yaml:"-"`
	Canvas  CanvasSpec `yaml:"canvas"`
	Eval    EvalSpec   `yaml:"eval"`
	Palette []string   `yaml:"palette"`
}

// CanvasSpec describes the SVG output
type CanvasSpec struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

// EvalSpec bounds evaluation. A nil Seed means a fresh seed per run;
// MaxCommands 0 means no limit.
type EvalSpec struct {
	MaxDepth    int     `yaml:"max_depth"`
	Seed        *uint64 `yaml:"seed"`
	MaxCommands int     `yaml:"max_commands"`
}

// ValidationError aggregates configuration problems
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in configuration: an 800x800 white canvas and
// the standard color palette.
func Default() *Config {
	return &Config{
		Canvas: CanvasSpec{
			Width:      codegen.DefaultCanvas.Width,
			Height:     codegen.DefaultCanvas.Height,
			Background: codegen.DefaultCanvas.Background,
		},
		Eval: EvalSpec{
			MaxDepth: eval.DefaultMaxDepth,
		},
		Palette: slices.Clone(eval.DefaultPalette),
	}
}

// Load reads a YAML configuration file. Keys left out keep their default
// values; an explicit empty palette accepts every color.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Decode parses a YAML configuration from r over the defaults
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting
func (c *Config) Validate() error {
	var errs ValidationError
	if c.Canvas.Width <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("canvas.width must be positive, got %d", c.Canvas.Width))
	}
	if c.Canvas.Height <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("canvas.height must be positive, got %d", c.Canvas.Height))
	}
	if c.Eval.MaxDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("eval.max_depth must not be negative, got %d", c.Eval.MaxDepth))
	}
	if c.Eval.MaxCommands < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("eval.max_commands must not be negative, got %d", c.Eval.MaxCommands))
	}
	for i, color := range c.Palette {
		if strings.TrimSpace(color) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("palette[%d] must be a non-empty string", i))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SVGCanvas converts the canvas settings for the SVG generator
func (c *Config) SVGCanvas() codegen.Canvas {
	return codegen.Canvas{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		Background: c.Canvas.Background,
	}
}

// WithSeed returns a copy of c using seed
func (c *Config) WithSeed(seed uint64) *Config {
	cp := *c
	cp.Eval.Seed = &seed
	return &cp
}
