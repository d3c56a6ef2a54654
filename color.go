package ink

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorScheme selects which half of a DualColor is drawn.
type ColorScheme uint8

const (
	// Light is the default scheme.
	Light ColorScheme = iota
	// Dark selects the dark-mode variant of every stroke color.
	Dark
)

// String returns "light" or "dark".
func (s ColorScheme) String() string {
	if s == Dark {
		return "dark"
	}
	return "light"
}

// HSBA is a color in hue/saturation/brightness form.
// H is in degrees [0, 360); S, B and A are in [0, 1].
type HSBA struct {
	H, S, B, A float64
}

// ColorPair carries the same color in RGBA and HSBA form.
// Both are precomputed so rendering and tool UIs never convert.
type ColorPair struct {
	RGBA color.NRGBA
	HSBA HSBA
}

// NewColorPair returns the pair for c.
func NewColorPair(c color.Color) ColorPair {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	cf := colorful.Color{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
	}
	h, s, v := cf.Hsv()
	return ColorPair{
		RGBA: n,
		HSBA: HSBA{H: h, S: s, B: v, A: float64(n.A) / 255},
	}
}

// ColorPairFromHSBA returns the pair for an HSBA color.
func ColorPairFromHSBA(c HSBA) ColorPair {
	r, g, b := colorful.Hsv(c.H, c.S, c.B).Clamped().RGB255()
	return ColorPair{
		RGBA: color.NRGBA{R: r, G: g, B: b, A: alpha8(c.A)},
		HSBA: c,
	}
}

// DualColor holds a stroke color for each ColorScheme.
type DualColor struct {
	Light ColorPair
	Dark  ColorPair
}

// NewDualColor returns a DualColor with distinct light and dark variants.
func NewDualColor(light, dark color.Color) DualColor {
	return DualColor{Light: NewColorPair(light), Dark: NewColorPair(dark)}
}

// SameColor returns a DualColor that looks identical in both schemes.
func SameColor(c color.Color) DualColor {
	p := NewColorPair(c)
	return DualColor{Light: p, Dark: p}
}

// InvertedForDark returns a DualColor whose dark variant has the light
// variant's brightness inverted, keeping hue and saturation. Black ink
// becomes white ink on a dark canvas.
func InvertedForDark(c color.Color) DualColor {
	light := NewColorPair(c)
	hsba := light.HSBA
	hsba.B = 1 - hsba.B
	return DualColor{Light: light, Dark: ColorPairFromHSBA(hsba)}
}

// Resolve returns the variant for scheme. It never modifies d.
func (d DualColor) Resolve(scheme ColorScheme) ColorPair {
	if scheme == Dark {
		return d.Dark
	}
	return d.Light
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	a := uint8(0xff)
	if len(s) == 9 {
		v, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("ink: invalid alpha in color %q: %w", s, err)
		}
		a = uint8(v)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("ink: invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func alpha8(a float64) uint8 {
	switch {
	case !(a > 0):
		return 0
	case a >= 1:
		return 0xff
	}
	return uint8(a*255 + 0.5)
}
