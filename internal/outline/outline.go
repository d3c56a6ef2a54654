// Package outline turns freehand input samples into fillable stroke outlines.
//
// The builder works in four passes over the input:
//
//  1. Streamline: each raw point is pulled toward the previous smoothed
//     point, damping hardware jitter.
//  2. Width: a per-point radius is derived from pressure and thinning.
//     Without real pressure the builder can simulate it from travel speed,
//     measured per speedInterval when samples carry timestamps and per
//     sample otherwise.
//  3. Taper: radii within the start or end taper distance (arc length)
//     are scaled by the cap's easing curve.
//  4. Extrusion: perpendicular offsets give a left and a right boundary.
//     Gentle turns are mitered; sharper turns get round joins. The
//     outline is the left boundary forward, the end cap, the right
//     boundary reversed and the start cap, ready for a non-zero fill.
//
// A stroke that reduces to a single distinct point becomes a dot of radius
// Size/2.
package outline

import (
	"math"
	"time"
)

const (
	epsilon = 1e-9

	// minStreamlineT keeps the smoothed point moving even at streamline 1.
	minStreamlineT = 0.15

	// pressureRate controls how fast simulated pressure follows speed.
	pressureRate = 0.275

	// initialPressure seeds simulated pressure at the first point.
	initialPressure = 0.5

	// speedInterval is the time base for simulated pressure: speed is
	// distance travelled per display frame.
	speedInterval = 16 * time.Millisecond

	// arcStep is the maximum angle between emitted arc points.
	arcStep = math.Pi / 8

	// miterLimit is the cosine of the largest turn joined with a miter.
	// Sharper turns get a round join.
	miterLimit = 0.866 // cos 30°
)

// CapShape is the geometry used at a stroke end of non-zero width.
type CapShape uint8

const (
	// CapRound closes the end with a semicircle.
	CapRound CapShape = iota
	// CapFlat closes the end with a straight edge through the end point.
	CapFlat
	// CapPointed closes the end with a tip one radius beyond the end point.
	CapPointed
)

// Cap configures one end of a stroke.
type Cap struct {
	Shape CapShape

	// Taper is the arc length over which the width eases in (start) or
	// out (end). Zero disables tapering.
	Taper float64

	// Easing maps taper progress to a width factor. Nil means linear.
	Easing func(float64) float64
}

// Options configures outline construction.
type Options struct {
	// Size is the nominal stroke diameter.
	Size float64

	// Thinning in [0, 1] is how much pressure affects the width.
	Thinning float64

	// Smoothing in [0, 1] drops interior points closer than Size*Smoothing
	// to the previously emitted point.
	Smoothing float64

	// Streamline in [0, 1] damps input jitter. Higher is smoother.
	Streamline float64

	// Easing is applied to pressure before thinning. Nil means linear.
	Easing func(float64) float64

	// SimulatePressure synthesizes pressure from speed for samples
	// without a real pressure value. Speed is distance per 16ms when
	// inputs carry timestamps and distance per sample when they do not.
	SimulatePressure bool

	Start Cap
	End   Cap

	// Complete marks a finished stroke: the last input is used unsmoothed
	// and the end taper applies.
	Complete bool
}

// Input is one raw sample.
type Input struct {
	X, Y        float64
	Pressure    float64
	HasPressure bool

	// Time is the sample timestamp, zero when unknown.
	Time time.Duration
}

// StrokePoint is a smoothed point with its derived width.
type StrokePoint struct {
	Point Point

	// Pressure is the effective pressure in [0, 1].
	Pressure float64

	// Vector is the unit direction from the previous point.
	Vector Vec2

	// Distance is the distance from the previous point.
	Distance float64

	// RunningLength is the arc length from the first point.
	RunningLength float64

	// Elapsed is the time since the previous point, zero when the inputs
	// carry no timestamps.
	Elapsed time.Duration

	// Radius is the half-width at this point after thinning and taper.
	Radius float64

	rawPressure float64
	hasPressure bool
}

// Outline is the result of Build.
type Outline struct {
	// Polygon is the closed outline, suitable for a non-zero fill.
	// The closing edge from the last point back to the first is implicit.
	Polygon []Point

	// Points are the stroke points that were extruded.
	Points []StrokePoint

	// Dot is true when the stroke collapsed to a single point.
	Dot bool
}

// Build computes the outline for in.
// Non-finite inputs are dropped. An empty result means nothing to draw.
func Build(in []Input, o Options) Outline {
	pts := StrokePoints(in, o)
	switch len(pts) {
	case 0:
		return Outline{}
	case 1:
		pts[0].Radius = o.Size / 2
		return Outline{
			Polygon: Circle(pts[0].Point, o.Size/2),
			Points:  pts,
			Dot:     true,
		}
	}

	pts = thin(pts, o.Size*clamp01(o.Smoothing))
	return Outline{
		Polygon: extrude(pts, o),
		Points:  pts,
	}
}

// StrokePoints runs the streamline, width and taper passes.
func StrokePoints(in []Input, o Options) []StrokePoint {
	pts := streamline(in, o)
	if len(pts) == 0 {
		return nil
	}
	applyWidth(pts, o)
	applyTaper(pts, o)
	return pts
}

// Centerline returns the smoothed points without width information.
// It is the cheap approximation used while a stroke is still being drawn.
func Centerline(in []Input, o Options) []Point {
	pts := streamline(in, o)
	out := make([]Point, len(pts))
	for i := range pts {
		out[i] = pts[i].Point
	}
	return out
}

func streamline(in []Input, o Options) []StrokePoint {
	raw := make([]Input, 0, len(in))
	for _, s := range in {
		if !isFinite(s.X) || !isFinite(s.Y) {
			continue
		}
		if s.HasPressure && !isFinite(s.Pressure) {
			s.HasPressure = false
		}
		raw = append(raw, s)
	}
	if len(raw) == 0 {
		return nil
	}

	t := 1 - clamp01(o.Streamline)
	if t < minStreamlineT {
		t = minStreamlineT
	}

	pts := make([]StrokePoint, 0, len(raw))
	prev := Point{X: raw[0].X, Y: raw[0].Y}
	pts = append(pts, StrokePoint{
		Point:       prev,
		rawPressure: raw[0].Pressure,
		hasPressure: raw[0].HasPressure,
	})

	running := 0.0
	prevTime := raw[0].Time
	last := len(raw) - 1
	for i := 1; i <= last; i++ {
		target := Point{X: raw[i].X, Y: raw[i].Y}
		p := target
		if !o.Complete || i != last {
			p = prev.Lerp(target, t)
		}
		d := p.Distance(prev)
		if d < epsilon {
			// Zero-length segment: no usable direction.
			continue
		}
		running += d
		var elapsed time.Duration
		if raw[i].Time > prevTime {
			elapsed = raw[i].Time - prevTime
			prevTime = raw[i].Time
		}
		pts = append(pts, StrokePoint{
			Point:         p,
			Vector:        p.Sub(prev).Scale(1 / d),
			Distance:      d,
			RunningLength: running,
			Elapsed:       elapsed,
			rawPressure:   raw[i].Pressure,
			hasPressure:   raw[i].HasPressure,
		})
		prev = p
	}
	if len(pts) > 1 {
		pts[0].Vector = pts[1].Vector
	}
	return pts
}

func applyWidth(pts []StrokePoint, o Options) {
	ease := o.Easing
	if ease == nil {
		ease = linear
	}
	thinning := clamp01(o.Thinning)
	prev := initialPressure
	for i := range pts {
		sp := &pts[i]
		var p float64
		switch {
		case sp.hasPressure:
			p = clamp01(sp.rawPressure)
		case o.SimulatePressure:
			step := sp.Distance
			if sp.Elapsed > 0 {
				step *= float64(speedInterval) / float64(sp.Elapsed)
			}
			speed := 0.0
			if o.Size > 0 {
				speed = math.Min(1, step/o.Size)
			}
			rp := math.Min(1, 1-speed)
			p = math.Min(1, prev+(rp-prev)*speed*pressureRate)
		default:
			p = 1
		}
		prev = p
		sp.Pressure = p
		sp.Radius = math.Max(0, o.Size/2*(1-thinning*(1-ease(p))))
	}
}

func applyTaper(pts []StrokePoint, o Options) {
	total := pts[len(pts)-1].RunningLength
	startEase := o.Start.Easing
	if startEase == nil {
		startEase = linear
	}
	endEase := o.End.Easing
	if endEase == nil {
		endEase = linear
	}
	for i := range pts {
		rl := pts[i].RunningLength
		ts, te := 1.0, 1.0
		if o.Start.Taper > 0 && rl < o.Start.Taper {
			ts = startEase(clamp01(rl / o.Start.Taper))
		}
		if o.Complete && o.End.Taper > 0 && total-rl < o.End.Taper {
			te = endEase(clamp01((total - rl) / o.End.Taper))
		}
		pts[i].Radius *= clamp01(math.Min(ts, te))
	}
}

// thin drops interior points closer than minDist to the last kept point.
// The first and last points are always kept.
func thin(pts []StrokePoint, minDist float64) []StrokePoint {
	if minDist <= 0 || len(pts) < 3 {
		return pts
	}
	out := make([]StrokePoint, 0, len(pts))
	out = append(out, pts[0])
	for i := 1; i < len(pts)-1; i++ {
		if pts[i].Point.Distance(out[len(out)-1].Point) < minDist {
			continue
		}
		out = append(out, pts[i])
	}
	return append(out, pts[len(pts)-1])
}

func extrude(pts []StrokePoint, o Options) []Point {
	n := len(pts)
	left := make([]Point, 0, n+8)
	right := make([]Point, 0, n+8)

	for i := 0; i < n; i++ {
		p := pts[i].Point
		r := pts[i].Radius
		var dir Vec2
		switch i {
		case 0:
			dir = pts[1].Point.Sub(p).Normalize()
		case n - 1:
			dir = p.Sub(pts[i-1].Point).Normalize()
		default:
			dPrev := p.Sub(pts[i-1].Point).Normalize()
			dNext := pts[i+1].Point.Sub(p).Normalize()
			if dPrev.Dot(dNext) < miterLimit {
				left = append(left, arc(p, r, dPrev.Perp(), dNext.Perp())...)
				right = append(right, arc(p, r, dPrev.Perp().Neg(), dNext.Perp().Neg())...)
				continue
			}
			// Miter: the bisector offset keeps distance r from both
			// segments.
			dir = dPrev.Add(dNext).Normalize()
			r /= math.Max(dir.Dot(dPrev), miterLimit)
		}
		off := dir.Perp().Scale(r)
		left = append(left, p.Add(off))
		right = append(right, p.Add(off.Neg()))
	}

	poly := make([]Point, 0, 2*n+32)
	poly = append(poly, left...)

	last := pts[n-1]
	poly = append(poly, capPoints(last.Point, last.Radius, p2v(last.Point, pts[n-2].Point), o.End.Shape)...)

	for i := len(right) - 1; i >= 0; i-- {
		poly = append(poly, right[i])
	}

	first := pts[0]
	poly = append(poly, capPoints(first.Point, first.Radius, p2v(pts[1].Point, first.Point).Neg(), o.Start.Shape)...)
	return poly
}

// capPoints returns the points strictly between the two boundary ends,
// walking clockwise from the +perp side around dir to the -perp side.
// dir points away from the stroke body.
func capPoints(c Point, r float64, dir Vec2, shape CapShape) []Point {
	if r < epsilon || dir == (Vec2{}) {
		return nil
	}
	switch shape {
	case CapFlat:
		return nil
	case CapPointed:
		return []Point{c.Add(dir.Scale(r))}
	default:
		return sweep(c, r, dir.Perp(), -math.Pi, false)
	}
}

// arc returns points on the shorter arc from unit vector a to unit vector b.
func arc(c Point, r float64, a, b Vec2) []Point {
	delta := b.Angle() - a.Angle()
	for delta > math.Pi {
		delta -= 2 * math.Pi
	}
	for delta <= -math.Pi {
		delta += 2 * math.Pi
	}
	return sweep(c, r, a, delta, true)
}

// sweep emits points on a circle starting at unit vector from and rotating
// by delta radians. Endpoints are included only when inclusive is set.
func sweep(c Point, r float64, from Vec2, delta float64, inclusive bool) []Point {
	steps := int(math.Ceil(math.Abs(delta) / arcStep))
	if steps < 2 {
		steps = 2
	}
	out := make([]Point, 0, steps+1)
	lo, hi := 1, steps-1
	if inclusive {
		lo, hi = 0, steps
	}
	for i := lo; i <= hi; i++ {
		a := delta * float64(i) / float64(steps)
		out = append(out, c.Add(from.Rotate(a).Scale(r)))
	}
	return out
}

// Circle returns a closed polygon approximating a circle.
func Circle(c Point, r float64) []Point {
	if r <= 0 {
		return []Point{c}
	}
	segments := int(math.Ceil(2 * math.Pi * r / 1.5))
	segments = max(16, min(segments, 128))
	out := make([]Point, segments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(segments)
		sin, cos := math.Sincos(a)
		out[i] = Point{X: c.X + r*cos, Y: c.Y + r*sin}
	}
	return out
}

func p2v(to, from Point) Vec2 {
	return to.Sub(from).Normalize()
}

func linear(t float64) float64 { return t }

func clamp01(t float64) float64 {
	switch {
	case math.IsNaN(t), t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t
}
