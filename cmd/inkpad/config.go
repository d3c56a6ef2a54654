package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/easing"
)

// Config is the inkpad settings file.
//
//	[window]
//	width = 1024.0
//	height = 768.0
//	scheme = "auto"
//
//	[[pen]]
//	name = "Pencil"
//	color = "#333333"
//	size = 2.0
//	thinning = 0.7
type Config struct {
	Window WindowConfig `toml:"window"`
	Pens   []PenConfig  `toml:"pen"`
	Eraser EraserConfig `toml:"eraser"`
}

// WindowConfig sizes the main window and picks the color scheme.
type WindowConfig struct {
	Title  string  `toml:"title"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`

	// Scheme is "light", "dark" or "auto". Auto follows the desktop theme.
	Scheme string `toml:"scheme"`

	// Scale is the device-pixel ratio used to rasterise strokes.
	Scale float64 `toml:"scale"`

	Workers int  `toml:"workers"`
	Split   bool `toml:"split_erase"`
}

// PenConfig is one pen preset.
type PenConfig struct {
	Name string `toml:"name"`

	// Color is the light-scheme color. Dark defaults to Color with its
	// brightness inverted.
	Color string `toml:"color"`
	Dark  string `toml:"dark"`

	Size       float64      `toml:"size"`
	Thinning   *float64     `toml:"thinning"`
	Smoothing  *float64     `toml:"smoothing"`
	Streamline *float64     `toml:"streamline"`
	Easing     easing.Curve `toml:"easing"`
	Simulate   *bool        `toml:"simulate_pressure"`
	Layer      string       `toml:"layer"`

	StartCap   ink.CapShape `toml:"start_cap"`
	StartTaper float64      `toml:"start_taper"`
	EndCap     ink.CapShape `toml:"end_cap"`
	EndTaper   float64      `toml:"end_taper"`
}

// EraserConfig sets the eraser radius in logical pixels.
type EraserConfig struct {
	Radius float64 `toml:"radius"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "inkpad",
			Width:  1024,
			Height: 768,
			Scheme: "auto",
			Scale:  1,
		},
		Pens: []PenConfig{
			{Name: "Pen", Color: "#000000", Size: 4},
			{Name: "Marker", Color: "#e53935", Size: 12, Thinning: ptr(0.0), Layer: "background"},
			{Name: "Pencil", Color: "#555555", Size: 2, Thinning: ptr(0.8), EndTaper: 24},
		},
		Eraser: EraserConfig{Radius: 8},
	}
}

// LoadConfig reads a TOML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes TOML from r over DefaultConfig and validates it.
// Pen presets in r replace the default presets.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	defaults := cfg.Pens
	cfg.Pens = nil

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("config %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Pens) == 0 {
		cfg.Pens = defaults
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field that DefaultConfig cannot fill in.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %vx%v must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.Scale <= 0 {
		errs = append(errs, fmt.Errorf("window scale %v must be positive", c.Window.Scale))
	}
	if _, err := parseScheme(c.Window.Scheme); err != nil {
		errs = append(errs, err)
	}
	for i, p := range c.Pens {
		if _, err := p.Style(); err != nil {
			errs = append(errs, fmt.Errorf("pen %d (%s): %w", i, p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Style converts the preset to a pen style on top of ink.DefaultPenStyle.
func (p PenConfig) Style() (ink.PenStyle, error) {
	s := ink.DefaultPenStyle()

	if p.Color != "" {
		light, err := ink.ParseHexColor(p.Color)
		if err != nil {
			return s, err
		}
		s.Color = ink.InvertedForDark(light)
		if p.Dark != "" {
			dark, err := ink.ParseHexColor(p.Dark)
			if err != nil {
				return s, err
			}
			s.Color = ink.NewDualColor(light, dark)
		}
	}
	if p.Size != 0 {
		s.Size = p.Size
	}
	if p.Thinning != nil {
		s.Thinning = *p.Thinning
	}
	if p.Smoothing != nil {
		s.Smoothing = *p.Smoothing
	}
	if p.Streamline != nil {
		s.Streamline = *p.Streamline
	}
	if p.Simulate != nil {
		s.SimulatePressure = *p.Simulate
	}
	s.Easing = p.Easing
	s.Start.Shape, s.Start.Taper = p.StartCap, p.StartTaper
	s.End.Shape, s.End.Taper = p.EndCap, p.EndTaper

	l, err := parseLayer(p.Layer)
	if err != nil {
		return s, err
	}
	s.Layer = l
	return s, nil
}

func parseLayer(s string) (ink.Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "foreground", "fg":
		return ink.Foreground, nil
	case "background", "bg":
		return ink.Background, nil
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

// parseScheme maps "auto" to Light; the host follows the desktop theme.
func parseScheme(s string) (ink.ColorScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ink.Light, nil
	case "light":
		return ink.Light, nil
	case "dark":
		return ink.Dark, nil
	}
	return ink.Light, fmt.Errorf("unknown color scheme %q", s)
}

func autoScheme(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "auto"
}

func ptr[T any](v T) *T { return &v }
