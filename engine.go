package ink

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gogpu/ink/internal/gpu"
	"github.com/gogpu/ink/internal/parallel"
	"github.com/gogpu/ink/surface"
)

// Engine ties stroke capture, the layer compositor, the pen register and
// the render surfaces together. It is the boundary a host talks to.
//
// Input methods are meant to be called from one input goroutine. Draw,
// DrawLayer, Frame and ForceFlush may run on a separate frame goroutine.
// All other methods are safe for concurrent use.
type Engine struct {
	buffer *SampleBuffer
	comp   *Compositor
	tools  *ToolState
	surf   *surface.Manager
	pool   *parallel.WorkerPool
	gpu    *gpu.LayerCompositor

	deferOutlines bool

	scheme atomic.Uint32
	closed atomic.Bool
}

// New creates an Engine. The engine has no surface size until the first
// Draw, Frame or Resize.
func New(opts ...Option) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.deferOutlines && o.workers == 0 {
		o.workers = -1
	}

	e := &Engine{
		buffer:        NewSampleBuffer(),
		comp:          NewCompositor(),
		tools:         NewToolState(o.tool, o.historySize),
		deferOutlines: o.deferOutlines,
	}
	e.comp.SetEraseStrategy(o.erase)
	e.scheme.Store(uint32(o.scheme))

	sopts := o.surfaceOptions
	if o.workers != 0 {
		e.pool = parallel.NewWorkerPool(o.workers)
		sopts = append(sopts, surface.WithExecutor(e.pool))
	}
	if o.gpu != nil {
		c, err := gpu.NewLayerCompositor(o.gpu)
		if err != nil {
			Logger().Warn("ink: GPU compositor unavailable, compositing on CPU", slog.Any("err", err))
		} else {
			e.gpu = c
			sopts = append(sopts, surface.WithCompositor(c))
			Logger().Info("ink: GPU compositor ready")
		}
	}
	e.surf = surface.NewManager(sopts...)
	e.comp.onChange = e.surf.RequestRedraw
	return e
}

// BeginStroke opens a stroke on layer. style is copied; later changes to
// the active tool never reach this stroke.
func (e *Engine) BeginStroke(layer Layer, style PenStyle) (StrokeHandle, error) {
	if e.closed.Load() {
		return 0, ErrEngineClosed
	}
	return e.buffer.Begin(layer, style)
}

// BeginStrokeWithActiveTool opens a stroke with a snapshot of the active
// tool, on the tool's layer.
func (e *Engine) BeginStrokeWithActiveTool() (StrokeHandle, error) {
	style := e.tools.Current()
	return e.BeginStroke(style.Layer, style)
}

// RecordStrokeSample appends s to the open stroke h and refreshes the
// layer's in-progress preview.
//
// A sample with NaN or infinite values is dropped and logged; the stroke
// continues and no error is returned.
func (e *Engine) RecordStrokeSample(h StrokeHandle, s PointerSample) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := e.buffer.Append(h, s); err != nil && !errors.Is(err, ErrInvalidSample) {
		return err
	}
	return e.publishPreview(h)
}

// RecordStrokeSamples appends a batch of samples, for hosts that receive
// coalesced pointer events. The preview is refreshed once.
func (e *Engine) RecordStrokeSamples(h StrokeHandle, samples []PointerSample) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := e.buffer.AppendBatch(h, samples); err != nil && !errors.Is(err, ErrInvalidSample) {
		return err
	}
	return e.publishPreview(h)
}

func (e *Engine) publishPreview(h StrokeHandle) error {
	preview, err := e.buffer.Preview(h)
	if err != nil {
		return err
	}
	if preview.Len() > 0 {
		e.comp.SetActive(preview)
	}
	return nil
}

// EndStroke closes h and commits the stroke to its layer.
//
// A stroke without any valid sample is discarded: EndStroke returns the
// zero StrokeID and a nil error.
func (e *Engine) EndStroke(h StrokeHandle) (StrokeID, error) {
	if e.closed.Load() {
		return uuid.Nil, ErrEngineClosed
	}
	s, err := e.buffer.End(h)
	if errors.Is(err, ErrEmptyStroke) {
		e.comp.ClearActive(h.Layer())
		Logger().Debug("ink: empty stroke discarded", slog.String("layer", h.Layer().String()))
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	if e.deferOutlines && e.pool != nil {
		e.pool.Submit(s.build)
	}
	return e.comp.Commit(s)
}

// AbortStroke discards h without committing. It reports whether a stroke
// was discarded. Aborting twice, or aborting a stroke with no samples, is
// safe.
func (e *Engine) AbortStroke(h StrokeHandle) bool {
	if !e.buffer.Abort(h) {
		return false
	}
	e.comp.ClearActive(h.Layer())
	return true
}

// ForceFlush finishes pending outline builds and rasterises every dirty
// layer now. Before the first Draw there is no surface and ForceFlush only
// builds outlines.
func (e *Engine) ForceFlush() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if e.pool != nil {
		e.pool.Wait()
	}
	snap := e.comp.Snapshot()
	for _, l := range Layers() {
		for s := range snap.StrokesInLayer(l) {
			s.build()
		}
	}
	if _, err := e.surf.Frame(e.scene()); err != nil && !errors.Is(err, surface.ErrInvalidDimensions) {
		return err
	}
	return nil
}

// Resize sets the surface size in device pixels. Every layer is redrawn
// from stroke geometry on the next frame.
func (e *Engine) Resize(width, height int) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.surf.Resize(width, height)
}

// Draw renders a width x height frame and hands it to p. Only dirty
// layers are rasterised.
func (e *Engine) Draw(p surface.Presenter, width, height int) error {
	if err := e.Resize(width, height); err != nil {
		return err
	}
	return e.surf.Draw(p, e.scene())
}

// Frame renders a width x height frame. The image is owned by the engine
// and stays valid until the next Frame, Draw or Resize.
func (e *Engine) Frame(width, height int) (*image.RGBA, error) {
	if err := e.Resize(width, height); err != nil {
		return nil, err
	}
	return e.surf.Frame(e.scene())
}

// DrawLayer renders one physical layer on its own, for hosts that keep a
// native surface per layer. The image is owned by the engine.
func (e *Engine) DrawLayer(l PhysicalLayer, width, height int) (*image.RGBA, error) {
	if err := e.Resize(width, height); err != nil {
		return nil, err
	}
	t, err := e.surf.RenderLayer(l, e.scene())
	if err != nil {
		return nil, err
	}
	return t.Image(), nil
}

// SetColorScheme selects which variant of each stroke color is drawn.
// Stroke geometry is untouched; only the layers are repainted.
func (e *Engine) SetColorScheme(s ColorScheme) {
	if ColorScheme(e.scheme.Swap(uint32(s))) == s {
		return
	}
	e.surf.RequestRedrawAll()
	Logger().Debug("ink: color scheme changed", slog.String("scheme", s.String()))
}

// ColorScheme returns the current color scheme.
func (e *Engine) ColorScheme() ColorScheme {
	return ColorScheme(e.scheme.Load())
}

// SetActiveTool replaces the current pen. Strokes already begun keep the
// style they started with.
func (e *Engine) SetActiveTool(style PenStyle) {
	e.tools.Set(style)
}

// ActiveTool returns the current pen.
func (e *Engine) ActiveTool() PenStyle {
	return e.tools.Current()
}

// ToolHistory returns recently used pens, most recent first.
func (e *Engine) ToolHistory() []PenStyle {
	return e.tools.History()
}

// Erase applies the eraser to committed strokes and returns the ids of
// the strokes it hit.
func (e *Engine) Erase(path EraserPath) []StrokeID {
	if e.closed.Load() {
		return nil
	}
	return e.comp.Erase(path)
}

// Clear removes every committed stroke of l and returns how many there
// were.
func (e *Engine) Clear(l Layer) int {
	if e.closed.Load() || !l.Valid() {
		return 0
	}
	return e.comp.Clear(l)
}

// StrokesInLayer iterates over the committed strokes of l in commit
// order, as of the call.
func (e *Engine) StrokesInLayer(l Layer) iter.Seq[*Stroke] {
	return e.comp.StrokesInLayer(l)
}

// Stroke looks up a committed stroke.
func (e *Engine) Stroke(id StrokeID) (*Stroke, bool) {
	return e.comp.Stroke(id)
}

// Snapshot returns an immutable view of every layer.
func (e *Engine) Snapshot() *Snapshot {
	return e.comp.Snapshot()
}

// SurfaceLost tells the engine the host surface is gone, for example
// while the application is in the background. Drawing returns
// ErrSurfaceUnavailable and redraw requests are kept until
// SurfaceRestored.
func (e *Engine) SurfaceLost() {
	e.surf.Suspend()
}

// SurfaceRestored repaints every layer on the next frame.
func (e *Engine) SurfaceRestored() {
	e.surf.Resume()
}

// Stats reports rendering counters.
func (e *Engine) Stats() surface.Stats {
	return e.surf.Stats()
}

// Close discards open strokes and releases the surfaces, the worker pool
// and any GPU resources. Committed strokes stay readable through
// snapshots taken earlier. Close is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, l := range Layers() {
		if h, ok := e.buffer.Open(l); ok {
			e.buffer.Abort(h)
		}
	}
	if e.pool != nil {
		e.pool.Close()
	}
	var errs []error
	if err := e.surf.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close surface: %w", err))
	}
	if e.gpu != nil {
		if err := e.gpu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpu compositor: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) scene() *engineScene {
	return &engineScene{e: e}
}

// engineScene paints one frame. The snapshot and scheme are read on the
// first PaintLayer call, after the surface has cleared the dirty bits, so
// any change made after that point marks its layer dirty again.
type engineScene struct {
	e      *Engine
	once   sync.Once
	snap   *Snapshot
	scheme ColorScheme
}

func (s *engineScene) load() {
	s.once.Do(func() {
		s.scheme = s.e.ColorScheme()
		s.snap = s.e.comp.Snapshot()
	})
}

// PaintLayer implements surface.Scene.
func (s *engineScene) PaintLayer(pl PhysicalLayer, c *surface.Canvas) {
	s.load()
	l := logicalLayer(pl)
	if pl.Active() {
		if st := s.snap.Active(l); st != nil {
			paintPreview(c, st, s.scheme)
		}
		return
	}
	for st := range s.snap.StrokesInLayer(l) {
		paintStroke(c, st, s.scheme)
	}
}

// paintStroke fills the outline of a committed stroke.
func paintStroke(c *surface.Canvas, s *Stroke, scheme ColorScheme) {
	c.FillPolygon(s.Outline(), s.style.Color.Resolve(scheme).RGBA)
}

// paintPreview draws an in-progress stroke as its centerline at the
// nominal width.
func paintPreview(c *surface.Canvas, s *Stroke, scheme ColorScheme) {
	size := s.style.outlineOptions(false).Size
	c.StrokePolyline(s.Centerline(), size, s.style.Color.Resolve(scheme).RGBA)
}
