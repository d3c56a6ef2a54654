package ink

import (
	"math"

	"github.com/gogpu/ink/internal/outline"
)

// EraserPath is a swept eraser: a polyline with a radius.
type EraserPath struct {
	Points []Point
	Radius float64

	// Layers restricts erasing to the listed layers. Empty means all.
	Layers []Layer
}

func (p EraserPath) appliesTo(l Layer) bool {
	if len(p.Layers) == 0 {
		return true
	}
	for _, pl := range p.Layers {
		if pl == l {
			return true
		}
	}
	return false
}

// EraseStrategy decides what remains of a committed stroke touched by an
// eraser.
type EraseStrategy interface {
	// Erase reports whether path hits s and, if so, the strokes that
	// replace it at the same position. Nil remains removes s entirely.
	Erase(s *Stroke, path EraserPath) (hit bool, remains []*Stroke)
}

var (
	// WholeStroke removes any stroke the eraser touches. It is the
	// default strategy.
	WholeStroke EraseStrategy = wholeStroke{}

	// SplitStroke cuts the samples under the eraser and keeps each
	// surviving run as a new stroke with the original style.
	SplitStroke EraseStrategy = splitStroke{}
)

type wholeStroke struct{}

func (wholeStroke) Erase(s *Stroke, path EraserPath) (bool, []*Stroke) {
	reach, ok := eraseReach(s, path)
	if !ok {
		return false, nil
	}
	n := s.Len()
	if n == 1 {
		p := toOutline(s.samples[0].Position)
		return distanceToPath(p, p, path) <= reach, nil
	}
	for i := 1; i < n; i++ {
		a := toOutline(s.samples[i-1].Position)
		b := toOutline(s.samples[i].Position)
		if distanceToPath(a, b, path) <= reach {
			return true, nil
		}
	}
	return false, nil
}

type splitStroke struct{}

func (splitStroke) Erase(s *Stroke, path EraserPath) (bool, []*Stroke) {
	reach, ok := eraseReach(s, path)
	if !ok {
		return false, nil
	}
	n := s.Len()
	gone := make([]bool, n)
	hit := false
	for i := range n {
		p := toOutline(s.samples[i].Position)
		if distanceToPath(p, p, path) <= reach {
			gone[i] = true
			hit = true
		}
	}
	// A segment crossing the eraser between two surviving samples splits
	// the run there.
	cut := make([]bool, n)
	for i := 1; i < n; i++ {
		if gone[i-1] || gone[i] {
			continue
		}
		a := toOutline(s.samples[i-1].Position)
		b := toOutline(s.samples[i].Position)
		if distanceToPath(a, b, path) <= reach {
			cut[i] = true
			hit = true
		}
	}
	if !hit {
		return false, nil
	}

	var remains []*Stroke
	start := -1
	for i := 0; i <= n; i++ {
		end := i == n || gone[i] || cut[i]
		if end && start >= 0 {
			remains = append(remains, s.Sub(start, i))
			start = -1
		}
		if i < n && !gone[i] && start < 0 {
			start = i
		}
	}
	return true, remains
}

// eraseReach returns the distance from the stroke's centerline within
// which the eraser touches it. ok is false when the bounding boxes cannot
// overlap.
func eraseReach(s *Stroke, path EraserPath) (float64, bool) {
	if s.Len() == 0 || len(path.Points) == 0 {
		return 0, false
	}
	reach := math.Max(0, path.Radius) + s.style.outlineOptions(true).Size/2

	sMin, sMax := sampleBounds(s)
	pMin, pMax := pathBounds(path.Points)
	if sMin.X-reach > pMax.X || pMin.X > sMax.X+reach ||
		sMin.Y-reach > pMax.Y || pMin.Y > sMax.Y+reach {
		return 0, false
	}
	return reach, true
}

func distanceToPath(a, b outline.Point, path EraserPath) float64 {
	if len(path.Points) == 1 {
		p := toOutline(path.Points[0])
		return outline.SegmentDistance(a, b, p, p)
	}
	d := math.Inf(1)
	for i := 1; i < len(path.Points); i++ {
		c := toOutline(path.Points[i-1])
		e := toOutline(path.Points[i])
		d = math.Min(d, outline.SegmentDistance(a, b, c, e))
	}
	return d
}

func sampleBounds(s *Stroke) (Point, Point) {
	lo, hi := s.samples[0].Position, s.samples[0].Position
	for _, smp := range s.samples[1:] {
		lo.X = math.Min(lo.X, smp.Position.X)
		lo.Y = math.Min(lo.Y, smp.Position.Y)
		hi.X = math.Max(hi.X, smp.Position.X)
		hi.Y = math.Max(hi.Y, smp.Position.Y)
	}
	return lo, hi
}

func pathBounds(pts []Point) (Point, Point) {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
	}
	return lo, hi
}
