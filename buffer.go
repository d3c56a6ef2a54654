package ink

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// StrokeHandle refers to an open stroke in a SampleBuffer.
// Handles are never reused; a handle whose stroke has ended or been
// aborted is stale.
type StrokeHandle uint64

// Layer returns the layer the handle was opened on.
func (h StrokeHandle) Layer() Layer {
	return Layer(h & 1)
}

func newStrokeHandle(gen uint64, l Layer) StrokeHandle {
	return StrokeHandle(gen<<1 | uint64(l&1))
}

// openStroke is the mutable capture state of one slot.
type openStroke struct {
	handle  StrokeHandle
	id      StrokeID
	layer   Layer
	style   PenStyle
	samples []Sample
	next    uint32
}

// SampleBuffer normalizes pointer samples into per-stroke sample streams.
// It holds at most one open stroke per layer.
//
// SampleBuffer is safe for concurrent use, although input normally
// arrives on a single goroutine.
type SampleBuffer struct {
	mu    sync.Mutex
	gen   uint64
	slots [layerCount]*openStroke
}

// NewSampleBuffer returns an empty buffer.
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

// Begin opens a stroke on layer with a snapshot of style.
func (b *SampleBuffer) Begin(layer Layer, style PenStyle) (StrokeHandle, error) {
	if !layer.Valid() {
		return 0, fmt.Errorf("ink: begin on %v: invalid layer", layer)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if open := b.slots[layer]; open != nil {
		return 0, fmt.Errorf("%w: %v layer has stroke %s open", ErrStrokeAlreadyInProgress, layer, open.id)
	}
	b.gen++
	os := &openStroke{
		handle: newStrokeHandle(b.gen, layer),
		id:     uuid.New(),
		layer:  layer,
		style:  style,
	}
	b.slots[layer] = os
	return os.handle, nil
}

// BeginAt opens a stroke and records its first sample. If the sample is
// invalid the stroke stays open and the returned error wraps
// ErrInvalidSample.
func (b *SampleBuffer) BeginAt(layer Layer, style PenStyle, s PointerSample) (StrokeHandle, error) {
	h, err := b.Begin(layer, style)
	if err != nil {
		return 0, err
	}
	return h, b.Append(h, s)
}

// Append records s on the open stroke h.
//
// A sample with the same timestamp as the previous one replaces it,
// keeping its sequence index, so bursts from a single event callback do
// not produce over-dense geometry. Samples with non-finite values are
// dropped with a warning and ErrInvalidSample is returned.
func (b *SampleBuffer) Append(h StrokeHandle, s PointerSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	os, err := b.lookup(h)
	if err != nil {
		return err
	}
	return os.append(s)
}

// AppendBatch records samples in order. Invalid samples are dropped; the
// first such error is returned after the whole batch is processed.
func (b *SampleBuffer) AppendBatch(h StrokeHandle, samples []PointerSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	os, err := b.lookup(h)
	if err != nil {
		return err
	}
	var first error
	for _, s := range samples {
		if err := os.append(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Preview returns an immutable view of the samples recorded so far.
func (b *SampleBuffer) Preview(h StrokeHandle) (*Stroke, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	os, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	return newStroke(os.id, os.layer, os.style, os.samples, false), nil
}

// End closes h and returns the finished stroke. The slot is freed even
// when the stroke has no valid samples, in which case ErrEmptyStroke is
// returned.
func (b *SampleBuffer) End(h StrokeHandle) (*Stroke, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	os, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	b.slots[os.layer] = nil
	if len(os.samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyStroke, os.id)
	}
	return newStroke(os.id, os.layer, os.style, os.samples, true), nil
}

// Abort discards h without producing a stroke. It reports whether a
// stroke was discarded; aborting a stale handle is a no-op.
func (b *SampleBuffer) Abort(h StrokeHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lookup(h); err != nil {
		return false
	}
	b.slots[h.Layer()] = nil
	return true
}

// Open returns the handle of the open stroke on layer, if any.
func (b *SampleBuffer) Open(layer Layer) (StrokeHandle, bool) {
	if !layer.Valid() {
		return 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if os := b.slots[layer]; os != nil {
		return os.handle, true
	}
	return 0, false
}

func (b *SampleBuffer) lookup(h StrokeHandle) (*openStroke, error) {
	os := b.slots[h.Layer()]
	if os == nil || os.handle != h {
		return nil, fmt.Errorf("%w: handle %d", ErrUnknownStroke, uint64(h))
	}
	return os, nil
}

// coalesceDistance is how far, in logical pixels, a repeat of a
// timestamped sample may move and still replace it.
const coalesceDistance = 0.5

// coalesces reports whether next is a repeat of prev: the same non-zero
// timestamp at nearly the same position. Unstamped samples are always
// kept.
func coalesces(prev, next Sample) bool {
	return next.Time != 0 && prev.Time == next.Time &&
		prev.Position.Distance(next.Position) <= coalesceDistance
}

func (os *openStroke) append(s PointerSample) error {
	pos := s.SamplePosition()
	p, has := s.SamplePressure()
	if !validSample(pos, p, has) {
		Logger().Warn("ink: dropped invalid sample",
			slog.String("stroke", os.id.String()),
			slog.Float64("x", pos.X),
			slog.Float64("y", pos.Y))
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidSample, pos.X, pos.Y)
	}
	smp := Sample{
		Position:    pos,
		Pressure:    clampPressure(p),
		HasPressure: has,
		Time:        s.SampleTime(),
	}
	if !has {
		smp.Pressure = 0
	}

	n := len(os.samples)
	if n > 0 && coalesces(os.samples[n-1], smp) {
		// Earlier previews share the backing array, so copy instead of
		// overwriting in place.
		smp.Seq = os.samples[n-1].Seq
		os.samples = append(os.samples[:n-1:n-1], smp)
		return nil
	}
	smp.Seq = os.next
	os.next++
	os.samples = append(os.samples, smp)
	return nil
}
