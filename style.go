package ink

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/ink/easing"
	"github.com/gogpu/ink/internal/outline"
)

// DefaultSize is the stroke diameter used when a style has no valid size.
const DefaultSize = 4.0

// CapShape is the geometry at a stroke end of non-zero width.
type CapShape uint8

const (
	// CapRound closes the end with a semicircle.
	CapRound CapShape = iota
	// CapFlat cuts the stroke square at the end point.
	CapFlat
	// CapPointed ends in a tip one half-width beyond the end point.
	CapPointed
)

// String returns the cap name.
func (s CapShape) String() string {
	switch s {
	case CapRound:
		return "round"
	case CapFlat:
		return "flat"
	case CapPointed:
		return "pointed"
	}
	return fmt.Sprintf("CapShape(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CapShape) MarshalText() ([]byte, error) {
	if s > CapPointed {
		return nil, fmt.Errorf("ink: invalid cap shape %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CapShape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "round", "":
		*s = CapRound
	case "flat", "butt":
		*s = CapFlat
	case "pointed":
		*s = CapPointed
	default:
		return fmt.Errorf("ink: unknown cap shape %q", b)
	}
	return nil
}

// Cap configures one end of a stroke.
type Cap struct {
	Shape CapShape

	// Taper is the arc length, in logical pixels, over which the width
	// eases in or out. Zero disables the taper.
	Taper float64

	// Easing maps progress through the taper zone to a width factor.
	Easing easing.Curve
}

// PenStyle is a value type: copying a PenStyle snapshots it.
// A stroke keeps the style it was begun with for its whole life.
type PenStyle struct {
	Color DualColor

	// Size is the nominal stroke diameter in logical pixels.
	Size float64

	// Thinning in [0, 1] is how strongly pressure narrows the stroke.
	// Zero ignores pressure.
	Thinning float64

	// Smoothing in [0, 1] skips interior points closer than Size*Smoothing.
	Smoothing float64

	// Streamline in [0, 1] damps input jitter. Higher is smoother but lags.
	Streamline float64

	// Easing is applied to pressure before thinning.
	Easing easing.Curve

	// SimulatePressure derives pressure from speed for samples that carry
	// none.
	SimulatePressure bool

	Start Cap
	End   Cap

	// Layer is the default placement for strokes begun with this style
	// through BeginStrokeWithActiveTool.
	Layer Layer
}

// DefaultPenStyle returns a black, medium, lightly smoothed pen that
// inverts to white in the dark scheme.
func DefaultPenStyle() PenStyle {
	return PenStyle{
		Color:            InvertedForDark(color.Black),
		Size:             DefaultSize,
		Thinning:         0.5,
		Smoothing:        0.5,
		Streamline:       0.5,
		Easing:           easing.Linear,
		SimulatePressure: true,
		Start:            Cap{Shape: CapRound, Easing: easing.OutQuad},
		End:              Cap{Shape: CapRound, Easing: easing.OutQuad},
		Layer:            Foreground,
	}
}

// WithColor returns a copy of s with the given color.
func (s PenStyle) WithColor(c DualColor) PenStyle {
	s.Color = c
	return s
}

// WithSize returns a copy of s with the given diameter.
func (s PenStyle) WithSize(size float64) PenStyle {
	s.Size = size
	return s
}

// WithThinning returns a copy of s with the given thinning.
func (s PenStyle) WithThinning(t float64) PenStyle {
	s.Thinning = t
	return s
}

// WithSmoothing returns a copy of s with the given smoothing.
func (s PenStyle) WithSmoothing(v float64) PenStyle {
	s.Smoothing = v
	return s
}

// WithStreamline returns a copy of s with the given streamline factor.
func (s PenStyle) WithStreamline(v float64) PenStyle {
	s.Streamline = v
	return s
}

// WithEasing returns a copy of s with the given pressure easing.
func (s PenStyle) WithEasing(c easing.Curve) PenStyle {
	s.Easing = c
	return s
}

// WithSimulatePressure returns a copy of s with pressure simulation
// switched on or off.
func (s PenStyle) WithSimulatePressure(on bool) PenStyle {
	s.SimulatePressure = on
	return s
}

// WithStartCap returns a copy of s with the given start cap.
func (s PenStyle) WithStartCap(c Cap) PenStyle {
	s.Start = c
	return s
}

// WithEndCap returns a copy of s with the given end cap.
func (s PenStyle) WithEndCap(c Cap) PenStyle {
	s.End = c
	return s
}

// WithLayer returns a copy of s with the given default layer.
func (s PenStyle) WithLayer(l Layer) PenStyle {
	s.Layer = l
	return s
}

// outlineOptions maps s to geometry options. Out-of-range values are
// clamped here so a stored style is kept exactly as given.
func (s PenStyle) outlineOptions(complete bool) outline.Options {
	size := s.Size
	if !(size > 0) || math.IsInf(size, 0) {
		size = DefaultSize
	}
	return outline.Options{
		Size:             size,
		Thinning:         unit(s.Thinning),
		Smoothing:        unit(s.Smoothing),
		Streamline:       unit(s.Streamline),
		Easing:           s.Easing.Func(),
		SimulatePressure: s.SimulatePressure,
		Start:            s.Start.outline(),
		End:              s.End.outline(),
		Complete:         complete,
	}
}

func (c Cap) outline() outline.Cap {
	taper := c.Taper
	if !(taper > 0) || math.IsInf(taper, 0) {
		taper = 0
	}
	return outline.Cap{
		Shape:  outline.CapShape(c.Shape),
		Taper:  taper,
		Easing: c.Easing.Func(),
	}
}

func unit(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}
