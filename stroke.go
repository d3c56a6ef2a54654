package ink

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gogpu/ink/internal/outline"
)

// StrokeID identifies a stroke for its whole life.
type StrokeID = uuid.UUID

// Stroke is one pen-down to pen-up path with the style it was drawn with.
//
// A committed Stroke is immutable. Its outline is computed at most once,
// on first use or by a background worker, and shared by all readers.
// In-progress strokes seen through a Snapshot are immutable views of the
// samples recorded so far.
type Stroke struct {
	id       StrokeID
	layer    Layer
	style    PenStyle
	samples  []Sample
	complete bool

	once  sync.Once
	ready atomic.Bool
	geom  outline.Outline
	poly  []Point
}

func newStroke(id StrokeID, layer Layer, style PenStyle, samples []Sample, complete bool) *Stroke {
	return &Stroke{
		id:       id,
		layer:    layer,
		style:    style,
		samples:  samples[:len(samples):len(samples)],
		complete: complete,
	}
}

// ID returns the stroke identifier.
func (s *Stroke) ID() StrokeID { return s.id }

// Layer returns the logical layer of the stroke.
func (s *Stroke) Layer() Layer { return s.layer }

// Style returns the style snapshot taken when the stroke began.
func (s *Stroke) Style() PenStyle { return s.style }

// Complete reports whether the stroke has ended.
func (s *Stroke) Complete() bool { return s.complete }

// Len returns the number of recorded samples.
func (s *Stroke) Len() int { return len(s.samples) }

// Sample returns the i-th sample.
func (s *Stroke) Sample(i int) Sample { return s.samples[i] }

// Samples returns a copy of the recorded samples.
func (s *Stroke) Samples() []Sample {
	return append([]Sample(nil), s.samples...)
}

// All iterates over the recorded samples in order.
func (s *Stroke) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i, smp := range s.samples {
			if !yield(i, smp) {
				return
			}
		}
	}
}

// Outline returns the closed outline polygon, ready for a non-zero fill.
// The returned slice is shared and must not be modified.
func (s *Stroke) Outline() []Point {
	s.build()
	return s.poly
}

// IsDot reports whether the stroke collapsed to a single point.
func (s *Stroke) IsDot() bool {
	s.build()
	return s.geom.Dot
}

// Bounds returns the bounding box of the outline. ok is false for a
// stroke without geometry.
func (s *Stroke) Bounds() (minPt, maxPt Point, ok bool) {
	s.build()
	lo, hi, ok := outline.Bounds(s.geom.Polygon)
	return fromOutline(lo), fromOutline(hi), ok
}

// Centerline returns the smoothed path without width. It is what the
// active layer draws while the stroke is in progress.
func (s *Stroke) Centerline() []Point {
	pts := outline.Centerline(s.inputs(), s.style.outlineOptions(s.complete))
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = fromOutline(p)
	}
	return out
}

// Sub returns a new completed stroke with samples [from, to) and a fresh
// ID. Sequence indices are renumbered from zero. Erase strategies use it
// to keep the surviving runs of a split stroke.
func (s *Stroke) Sub(from, to int) *Stroke {
	samples := make([]Sample, to-from)
	copy(samples, s.samples[from:to])
	for i := range samples {
		samples[i].Seq = uint32(i)
	}
	return newStroke(uuid.New(), s.layer, s.style, samples, true)
}

func (s *Stroke) build() {
	s.once.Do(func() {
		s.geom = outline.Build(s.inputs(), s.style.outlineOptions(s.complete))
		s.poly = make([]Point, len(s.geom.Polygon))
		for i, p := range s.geom.Polygon {
			s.poly[i] = fromOutline(p)
		}
		s.ready.Store(true)
	})
}

// built reports whether the outline has been computed.
func (s *Stroke) built() bool {
	return s.ready.Load()
}

func (s *Stroke) inputs() []outline.Input {
	in := make([]outline.Input, len(s.samples))
	for i, smp := range s.samples {
		in[i] = outline.Input{
			X:           smp.Position.X,
			Y:           smp.Position.Y,
			Pressure:    smp.Pressure,
			HasPressure: smp.HasPressure,
			Time:        smp.Time,
		}
	}
	return in
}
