package ink

import (
	"time"
)

// Sample is one recorded pointer sample of a stroke.
// Samples are immutable once recorded.
type Sample struct {
	Position Point

	// Pressure in [0, 1]. Meaningful only when HasPressure is set;
	// absent pressure means full width unless the pen simulates pressure.
	Pressure    float64
	HasPressure bool

	// Seq is the position of the sample in its stroke.
	Seq uint32

	// Time is the host timestamp of the pointer event.
	Time time.Duration
}

// PointerSample is the input side of a sample. Platform adapters (mouse,
// touch, stylus) implement it; the engine never branches on the concrete
// type.
type PointerSample interface {
	// SamplePosition returns the pointer position in logical pixels.
	SamplePosition() Point

	// SamplePressure returns normalized pressure and whether the device
	// reported any.
	SamplePressure() (float64, bool)

	// SampleTime returns the event timestamp, or zero when the host has
	// none. A sample repeating the previous non-zero timestamp at nearly
	// the same position replaces it.
	SampleTime() time.Duration
}

// MouseSample is a pointer sample without pressure.
type MouseSample struct {
	X, Y float64
	Time time.Duration
}

func (s MouseSample) SamplePosition() Point           { return Point{X: s.X, Y: s.Y} }
func (s MouseSample) SamplePressure() (float64, bool) { return 0, false }
func (s MouseSample) SampleTime() time.Duration       { return s.Time }

// TouchSample is a finger sample. Force is reported in device units;
// pressure is Force/MaxForce when the device reports a maximum.
type TouchSample struct {
	X, Y     float64
	Force    float64
	MaxForce float64
	Time     time.Duration
}

func (s TouchSample) SamplePosition() Point { return Point{X: s.X, Y: s.Y} }

func (s TouchSample) SamplePressure() (float64, bool) {
	if s.MaxForce <= 0 {
		return 0, false
	}
	return s.Force / s.MaxForce, true
}

func (s TouchSample) SampleTime() time.Duration { return s.Time }

// PencilSample is a stylus sample with normalized pressure.
// Altitude and Azimuth (radians) are carried for hosts that need them and
// do not affect geometry.
type PencilSample struct {
	X, Y     float64
	Pressure float64
	Altitude float64
	Azimuth  float64
	Time     time.Duration
}

func (s PencilSample) SamplePosition() Point           { return Point{X: s.X, Y: s.Y} }
func (s PencilSample) SamplePressure() (float64, bool) { return s.Pressure, true }
func (s PencilSample) SampleTime() time.Duration       { return s.Time }

// validSample reports whether s can be recorded.
func validSample(pos Point, pressure float64, hasPressure bool) bool {
	if !pos.IsFinite() {
		return false
	}
	return !hasPressure || finite(pressure)
}

func clampPressure(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
