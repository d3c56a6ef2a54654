// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Scene supplies layer content to a frame.
//
// PaintLayer draws the content of l onto a cleared canvas in paint order.
// It may be called concurrently for different layers and must only read
// immutable data.
type Scene interface {
	PaintLayer(l Layer, c *Canvas)
}

// SceneFunc adapts a function to the Scene interface.
type SceneFunc func(l Layer, c *Canvas)

// PaintLayer implements Scene.
func (f SceneFunc) PaintLayer(l Layer, c *Canvas) { f(l, c) }

// Stats counts work done by a Manager.
type Stats struct {
	// Frames is the number of successful Frame calls.
	Frames uint64
	// LayerRedraws is the number of times a layer was rasterised.
	LayerRedraws uint64
	// Composites is the number of times the layers were blended.
	Composites uint64
}

// Manager owns one raster target per physical layer and redraws them
// lazily.
//
// RequestRedraw only sets a dirty bit and may be called from any
// goroutine. Rasterisation happens inside Frame and RenderLayer, which
// the host calls from its frame clock. Layer content is always rebuilt
// from the scene, never resampled, so a resize never blurs or clips
// strokes.
type Manager struct {
	mu sync.Mutex

	opts     options
	width    int
	height   int
	targets  [LayerCount]*Target
	composed *image.RGBA
	valid    bool // composed matches targets
	closed   bool

	dirty     atomic.Uint32
	suspended atomic.Bool

	frames       atomic.Uint64
	layerRedraws atomic.Uint64
	composites   atomic.Uint64
}

// NewManager returns a Manager without targets. Call Resize before the
// first frame.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{opts: o}
	m.dirty.Store(allLayers)
	return m
}

// RequestRedraw marks l dirty. The layer is rasterised on the next frame.
func (m *Manager) RequestRedraw(l Layer) {
	if l.Valid() {
		m.dirty.Or(l.bit())
	}
}

// RequestRedrawAll marks every layer dirty.
func (m *Manager) RequestRedrawAll() {
	m.dirty.Or(allLayers)
}

// Dirty reports whether l is waiting to be rasterised.
func (m *Manager) Dirty(l Layer) bool {
	return l.Valid() && m.dirty.Load()&l.bit() != 0
}

// Size returns the current target size in device pixels.
func (m *Manager) Size() (width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Scale returns the device-pixel ratio.
func (m *Manager) Scale() float64 {
	return m.opts.scale
}

// Resize recreates all targets at the new size and marks every layer
// dirty. Resizing to the current size is a no-op.
func (m *Manager) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.width == width && m.height == height && m.composed != nil {
		return nil
	}
	for _, l := range Layers() {
		m.targets[l] = newTarget(l, width, height)
	}
	m.composed = image.NewRGBA(image.Rect(0, 0, width, height))
	m.width, m.height = width, height
	m.valid = false
	m.dirty.Or(allLayers)
	Logger().Debug("surface: resized", slog.Int("width", width), slog.Int("height", height))
	return nil
}

// Suspend marks the surface as lost. Frames fail with
// ErrSurfaceUnavailable until Resume; redraw requests keep accumulating.
func (m *Manager) Suspend() {
	if !m.suspended.Swap(true) {
		Logger().Warn("surface: suspended")
	}
}

// Resume makes the surface available again and schedules a full redraw.
func (m *Manager) Resume() {
	if m.suspended.Swap(false) {
		m.dirty.Or(allLayers)
		Logger().Info("surface: resumed")
	}
}

// Suspended reports whether the surface is lost.
func (m *Manager) Suspended() bool {
	return m.suspended.Load()
}

// Frame rasterises dirty layers and composites all layers back to front.
// The returned image is owned by the Manager and valid until the next
// Frame or Resize.
func (m *Manager) Frame(scene Scene) (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return nil, err
	}
	if m.rasterise(scene, allLayers) > 0 || !m.valid {
		layers := make([]*image.RGBA, 0, LayerCount)
		for _, l := range Layers() {
			layers = append(layers, m.targets[l].img)
		}
		if err := m.opts.compositor.Composite(m.composed, layers); err != nil {
			return nil, fmt.Errorf("surface: composite: %w", err)
		}
		m.composites.Add(1)
		m.valid = true
	}
	m.frames.Add(1)
	return m.composed, nil
}

// RenderLayer rasterises l if it is dirty and returns its target.
// Hosts that present each layer separately use it instead of Frame.
func (m *Manager) RenderLayer(l Layer, scene Scene) (*Target, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("surface: invalid layer %d", uint8(l))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return nil, err
	}
	if m.rasterise(scene, l.bit()) > 0 {
		m.valid = false
	}
	return m.targets[l], nil
}

// Draw renders a frame and hands it to p.
func (m *Manager) Draw(p Presenter, scene Scene) error {
	img, err := m.Frame(scene)
	if err != nil {
		return err
	}
	return p.Present(img)
}

// Target returns the target of l, or nil before the first Resize.
func (m *Manager) Target(l Layer) *Target {
	if !l.Valid() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.targets[l]
}

// Stats returns work counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Frames:       m.frames.Load(),
		LayerRedraws: m.layerRedraws.Load(),
		Composites:   m.composites.Load(),
	}
}

// Close releases the targets. It is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.targets = [LayerCount]*Target{}
	m.composed = nil
	return nil
}

func (m *Manager) ready() error {
	switch {
	case m.closed:
		return ErrClosed
	case m.suspended.Load():
		return ErrSurfaceUnavailable
	case m.composed == nil:
		return fmt.Errorf("%w: surface was never sized", ErrInvalidDimensions)
	}
	return nil
}

// rasterise redraws the dirty layers selected by mask and returns how
// many were redrawn. Dirty bits are cleared before painting so requests
// made during the frame are served by the next one.
func (m *Manager) rasterise(scene Scene, mask uint32) int {
	todo := m.dirty.And(^mask) & mask
	if todo == 0 {
		return 0
	}
	var work []func()
	for _, l := range Layers() {
		if todo&l.bit() == 0 {
			continue
		}
		t := m.targets[l]
		work = append(work, func() {
			t.clear()
			scene.PaintLayer(t.layer, newCanvas(t.img, m.opts.scale))
		})
	}
	if m.opts.executor != nil && len(work) > 1 {
		m.opts.executor.ExecuteAll(work)
	} else {
		for _, w := range work {
			w()
		}
	}
	m.layerRedraws.Add(uint64(len(work)))
	Logger().Debug("surface: layers redrawn", slog.Int("count", len(work)))
	return len(work)
}
