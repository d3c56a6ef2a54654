package ink

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/ink/surface"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// drawLine records a straight stroke through pts and commits it.
func drawLine(t *testing.T, e *Engine, l Layer, style PenStyle, pts ...Point) StrokeID {
	t.Helper()
	h, err := e.BeginStroke(l, style)
	if err != nil {
		t.Fatalf("BeginStroke() = %v", err)
	}
	for i, p := range pts {
		s := MouseSample{X: p.X, Y: p.Y, Time: time.Duration(i) * 8 * time.Millisecond}
		if err := e.RecordStrokeSample(h, s); err != nil {
			t.Fatalf("RecordStrokeSample(%v) = %v", p, err)
		}
	}
	id, err := e.EndStroke(h)
	if err != nil {
		t.Fatalf("EndStroke() = %v", err)
	}
	return id
}

func strokes(e *Engine, l Layer) []*Stroke {
	var out []*Stroke
	for s := range e.StrokesInLayer(l) {
		out = append(out, s)
	}
	return out
}

func opaqueAt(img *image.RGBA, x, y int) bool {
	return img.RGBAAt(x, y).A == 255
}

func TestEngineStyleSnapshotSurvivesToolChange(t *testing.T) {
	e := newTestEngine(t)
	style := DefaultPenStyle().WithSize(10).WithThinning(0.3).WithLayer(Background)
	e.SetActiveTool(style)

	h, err := e.BeginStrokeWithActiveTool()
	if err != nil {
		t.Fatal(err)
	}
	if h.Layer() != Background {
		t.Errorf("stroke opened on %v, want the tool's layer", h.Layer())
	}
	for i := range 5 {
		_ = e.RecordStrokeSample(h, MouseSample{X: float64(i * 10), Y: 0, Time: time.Duration(i) * time.Millisecond})
	}
	e.SetActiveTool(DefaultPenStyle().WithSize(2))
	id, err := e.EndStroke(h)
	if err != nil {
		t.Fatal(err)
	}

	got := strokes(e, Background)
	if len(got) != 1 || got[0].ID() != id {
		t.Fatalf("background has %d strokes", len(got))
	}
	if got[0].Style() != style || got[0].Layer() != Background {
		t.Error("committed stroke does not carry the style snapshot taken at begin")
	}
	if e.ActiveTool().Size != 2 {
		t.Errorf("ActiveTool().Size = %v, want 2", e.ActiveTool().Size)
	}
	if hist := e.ToolHistory(); len(hist) < 2 || hist[1] != style {
		t.Error("previous tool missing from history")
	}
}

func TestEnginePressureThinning(t *testing.T) {
	e := newTestEngine(t)
	style := DefaultPenStyle().WithSize(10).WithThinning(0.5)
	h, err := e.BeginStroke(Foreground, style)
	if err != nil {
		t.Fatal(err)
	}
	samples := []PencilSample{
		{X: 0, Y: 0, Pressure: 1.0, Time: 0},
		{X: 10, Y: 0, Pressure: 1.0, Time: 8 * time.Millisecond},
		{X: 20, Y: 0, Pressure: 0.2, Time: 16 * time.Millisecond},
	}
	for _, s := range samples {
		if err := e.RecordStrokeSample(h, s); err != nil {
			t.Fatal(err)
		}
	}
	id, err := e.EndStroke(h)
	if err != nil {
		t.Fatal(err)
	}

	s, ok := e.Stroke(id)
	if !ok {
		t.Fatal("stroke not committed")
	}
	halfWidth := func(x float64) float64 {
		w := 0.0
		for _, p := range s.Outline() {
			if math.Abs(p.X-x) <= 0.5 {
				w = math.Max(w, math.Abs(p.Y))
			}
		}
		return w
	}
	if w0, w20 := halfWidth(0), halfWidth(20); w0 <= w20 {
		t.Errorf("width at x=0 (%v) should exceed width at x=20 (%v)", w0, w20)
	}
}

func TestEngineUnstampedSamples(t *testing.T) {
	e := newTestEngine(t)
	h, err := e.BeginStroke(Foreground, DefaultPenStyle())
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{0, 50, 100} {
		if err := e.RecordStrokeSample(h, MouseSample{X: x}); err != nil {
			t.Fatalf("RecordStrokeSample(%v) = %v", x, err)
		}
	}
	id, err := e.EndStroke(h)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := e.Stroke(id)
	if !ok {
		t.Fatal("committed stroke not found")
	}
	if s.Len() != 3 || s.IsDot() {
		t.Fatalf("Len() = %d, IsDot() = %v, want 3 samples and a line", s.Len(), s.IsDot())
	}
	lo, hi, _ := s.Bounds()
	if lo.X > 0 || hi.X < 100 {
		t.Errorf("bounds = %v %v, want to span x in [0, 100]", lo, hi)
	}
}

func TestEngineBeginAbortWithoutSamples(t *testing.T) {
	e := newTestEngine(t)
	h, err := e.BeginStroke(Foreground, DefaultPenStyle())
	if err != nil {
		t.Fatal(err)
	}
	if !e.AbortStroke(h) {
		t.Error("AbortStroke() = false for an open stroke")
	}
	if e.AbortStroke(h) {
		t.Error("second AbortStroke() = true")
	}
	if got := strokes(e, Foreground); len(got) != 0 {
		t.Errorf("aborted stroke committed: %d strokes", len(got))
	}
	if _, err := e.EndStroke(h); !errors.Is(err, ErrUnknownStroke) {
		t.Errorf("EndStroke after abort = %v, want ErrUnknownStroke", err)
	}
	if _, err := e.BeginStroke(Foreground, DefaultPenStyle()); err != nil {
		t.Errorf("BeginStroke after abort = %v", err)
	}
}

func TestEngineAbortClearsPreview(t *testing.T) {
	e := newTestEngine(t)
	h, _ := e.BeginStroke(Foreground, DefaultPenStyle())
	_ = e.RecordStrokeSample(h, MouseSample{X: 1, Y: 1})
	if e.Snapshot().Active(Foreground) == nil {
		t.Fatal("no preview after recording a sample")
	}
	e.AbortStroke(h)
	if e.Snapshot().Active(Foreground) != nil {
		t.Error("preview kept after abort")
	}
}

func TestEngineStrokeAlreadyInProgress(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.BeginStroke(Foreground, DefaultPenStyle()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeginStroke(Foreground, DefaultPenStyle()); !errors.Is(err, ErrStrokeAlreadyInProgress) {
		t.Errorf("BeginStroke on open slot = %v, want ErrStrokeAlreadyInProgress", err)
	}
}

func TestEngineInvalidSampleDropped(t *testing.T) {
	e := newTestEngine(t)
	h, _ := e.BeginStroke(Foreground, DefaultPenStyle())
	if err := e.RecordStrokeSample(h, MouseSample{X: math.Inf(1), Y: 0}); err != nil {
		t.Errorf("RecordStrokeSample(Inf) = %v, want nil", err)
	}
	_ = e.RecordStrokeSample(h, MouseSample{X: 1, Y: 1})
	err := e.RecordStrokeSamples(h, []PointerSample{
		MouseSample{X: 2, Y: 2, Time: time.Millisecond},
		MouseSample{Y: math.NaN(), Time: 2 * time.Millisecond},
	})
	if err != nil {
		t.Errorf("RecordStrokeSamples() = %v, want nil", err)
	}
	id, err := e.EndStroke(h)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := e.Stroke(id)
	if s.Len() != 2 {
		t.Errorf("stroke has %d samples, want 2", s.Len())
	}
}

func TestEngineEmptyStrokeDiscarded(t *testing.T) {
	e := newTestEngine(t)
	h, _ := e.BeginStroke(Background, DefaultPenStyle())
	_ = e.RecordStrokeSample(h, MouseSample{X: math.NaN()})
	id, err := e.EndStroke(h)
	if err != nil || id != uuid.Nil {
		t.Errorf("EndStroke(empty) = (%v, %v), want (nil id, nil)", id, err)
	}
	if e.Snapshot().Len(Background) != 0 {
		t.Error("empty stroke committed")
	}
}

func TestEngineResizeRedrawsFromGeometry(t *testing.T) {
	e := newTestEngine(t)
	style := DefaultPenStyle().WithSize(10).WithSimulatePressure(false)
	drawLine(t, e, Foreground, style, Pt(90, 100), Pt(100, 100), Pt(110, 100))
	drawLine(t, e, Background, style, Pt(990, 800), Pt(1000, 800), Pt(1010, 800))

	img, err := e.Frame(800, 600)
	if err != nil {
		t.Fatal(err)
	}
	if !opaqueAt(img, 100, 100) {
		t.Error("on-screen stroke missing at 800x600")
	}
	before := e.Stats().LayerRedraws

	img, err = e.Frame(1200, 900)
	if err != nil {
		t.Fatal(err)
	}
	if img.Rect.Dx() != 1200 || img.Rect.Dy() != 900 {
		t.Fatalf("frame = %v, want 1200x900", img.Rect)
	}
	if got := e.Stats().LayerRedraws - before; got != surface.LayerCount {
		t.Errorf("resize redrew %d layers, want %d", got, surface.LayerCount)
	}
	if !opaqueAt(img, 100, 100) {
		t.Error("stroke moved or vanished after resize")
	}
	if !opaqueAt(img, 1000, 800) {
		t.Error("stroke that became visible after resize was not drawn")
	}
}

func TestEngineActiveLayer(t *testing.T) {
	e := newTestEngine(t)
	h, _ := e.BeginStroke(Foreground, DefaultPenStyle().WithSize(6))
	for i := range 5 {
		_ = e.RecordStrokeSample(h, MouseSample{X: float64(10 + i*10), Y: 20, Time: time.Duration(i) * time.Millisecond})
	}

	active, err := e.DrawLayer(ForegroundActive, 100, 40)
	if err != nil {
		t.Fatal(err)
	}
	if !opaqueAt(active, 30, 20) {
		t.Error("in-progress stroke not drawn on the active layer")
	}

	if _, err := e.EndStroke(h); err != nil {
		t.Fatal(err)
	}
	active, _ = e.DrawLayer(ForegroundActive, 100, 40)
	if active.RGBAAt(30, 20).A != 0 {
		t.Error("active layer not cleared after commit")
	}
	static, _ := e.DrawLayer(ForegroundStatic, 100, 40)
	if !opaqueAt(static, 30, 20) {
		t.Error("committed stroke missing from the static layer")
	}
}

func TestEngineColorScheme(t *testing.T) {
	e := newTestEngine(t)
	id := drawLine(t, e, Foreground, DefaultPenStyle().WithSize(8), Pt(10, 10), Pt(30, 10))
	s, _ := e.Stroke(id)
	geom := &s.Outline()[0]

	img, err := e.Frame(40, 20)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(20, 10); got.R != 0 || got.A != 255 {
		t.Errorf("light pixel = %v, want black", got)
	}

	e.SetColorScheme(Dark)
	if e.ColorScheme() != Dark {
		t.Fatalf("ColorScheme() = %v", e.ColorScheme())
	}
	img, _ = e.Frame(40, 20)
	if got := img.RGBAAt(20, 10); got.R != 255 || got.A != 255 {
		t.Errorf("dark pixel = %v, want white", got)
	}
	if &s.Outline()[0] != geom {
		t.Error("scheme change recomputed geometry")
	}

	redraws := e.Stats().LayerRedraws
	e.SetColorScheme(Dark)
	_, _ = e.Frame(40, 20)
	if e.Stats().LayerRedraws != redraws {
		t.Error("setting the same scheme repainted layers")
	}
}

func TestEngineSurfaceLost(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Frame(50, 50); err != nil {
		t.Fatal(err)
	}

	e.SurfaceLost()
	drawLine(t, e, Foreground, DefaultPenStyle().WithSize(8), Pt(10, 25), Pt(40, 25))
	if _, err := e.Frame(50, 50); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("Frame() while lost = %v, want ErrSurfaceUnavailable", err)
	}
	if err := e.ForceFlush(); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("ForceFlush() while lost = %v, want ErrSurfaceUnavailable", err)
	}

	e.SurfaceRestored()
	img, err := e.Frame(50, 50)
	if err != nil {
		t.Fatalf("Frame() after restore = %v", err)
	}
	if !opaqueAt(img, 25, 25) {
		t.Error("stroke committed while lost was not drawn after restore")
	}
}

func TestEngineDraw(t *testing.T) {
	e := newTestEngine(t)
	drawLine(t, e, Background, DefaultPenStyle().WithSize(8), Pt(0, 5), Pt(20, 5))
	dst := image.NewRGBA(image.Rect(0, 0, 20, 10))
	if err := e.Draw(surface.NewImagePresenter(dst), 20, 10); err != nil {
		t.Fatal(err)
	}
	if !opaqueAt(dst, 10, 5) {
		t.Error("presented frame missing the stroke")
	}
	if err := e.Draw(surface.NewImagePresenter(dst), 0, 10); !errors.Is(err, surface.ErrInvalidDimensions) {
		t.Errorf("Draw(0x10) = %v, want ErrInvalidDimensions", err)
	}
}

func TestEngineForceFlush(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"inline", nil},
		{"deferred outlines", []Option{WithDeferredOutlines(true)}},
		{"workers", []Option{WithWorkers(2), WithDeferredOutlines(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.opts...)
			id := drawLine(t, e, Foreground, DefaultPenStyle(), Pt(0, 0), Pt(10, 10))
			if err := e.ForceFlush(); err != nil {
				t.Fatalf("ForceFlush() before any draw = %v", err)
			}
			s, _ := e.Stroke(id)
			if !s.built() {
				t.Error("outline not built after ForceFlush")
			}

			if _, err := e.Frame(20, 20); err != nil {
				t.Fatal(err)
			}
			drawLine(t, e, Foreground, DefaultPenStyle(), Pt(0, 10), Pt(20, 10))
			before := e.Stats().LayerRedraws
			if err := e.ForceFlush(); err != nil {
				t.Fatal(err)
			}
			if e.Stats().LayerRedraws == before {
				t.Error("ForceFlush did not rasterise the dirty layer")
			}
		})
	}
}

func TestEngineErase(t *testing.T) {
	e := newTestEngine(t, WithEraseStrategy(SplitStroke))
	id := drawLine(t, e, Foreground, DefaultPenStyle().WithStreamline(0),
		Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0), Pt(40, 0))

	hit := e.Erase(EraserPath{Points: []Point{Pt(20, 0)}, Radius: 1})
	if len(hit) != 1 || hit[0] != id {
		t.Fatalf("Erase() = %v, want [%v]", hit, id)
	}
	if n := e.Snapshot().Len(Foreground); n != 2 {
		t.Errorf("split left %d strokes, want 2", n)
	}
	if n := e.Clear(Foreground); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
}

func TestEngineClosed(t *testing.T) {
	e := New()
	h, _ := e.BeginStroke(Foreground, DefaultPenStyle())
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	if _, err := e.BeginStroke(Background, DefaultPenStyle()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("BeginStroke() = %v, want ErrEngineClosed", err)
	}
	if err := e.RecordStrokeSample(h, MouseSample{}); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("RecordStrokeSample() = %v, want ErrEngineClosed", err)
	}
	if _, err := e.Frame(10, 10); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Frame() = %v, want ErrEngineClosed", err)
	}
	if err := e.ForceFlush(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("ForceFlush() = %v, want ErrEngineClosed", err)
	}
	if e.AbortStroke(h) {
		t.Error("open stroke survived Close")
	}
}

type badProvider struct{}

func (badProvider) HalDevice() any { return nil }
func (badProvider) HalQueue() any  { return nil }

func TestEngineGPUCompositorFallsBackToCPU(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

	e := newTestEngine(t, WithGPUCompositor(badProvider{}))
	if e.gpu != nil {
		t.Fatal("GPU compositor created without a device")
	}
	if !strings.Contains(buf.String(), "GPU compositor unavailable") {
		t.Errorf("fallback not logged: %q", buf.String())
	}
	drawLine(t, e, Foreground, DefaultPenStyle().WithSize(8), Pt(0, 5), Pt(20, 5))
	img, err := e.Frame(20, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !opaqueAt(img, 10, 5) {
		t.Error("CPU fallback frame missing the stroke")
	}
}

func TestEngineConcurrentInputAndFrames(t *testing.T) {
	e := newTestEngine(t, WithWorkers(2), WithDeferredOutlines(true))
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if _, err := e.Frame(64, 64); err != nil {
				t.Errorf("Frame() = %v", err)
				return
			}
		}
	}()

	for i := range 20 {
		y := float64(i * 3)
		drawLine(t, e, Layer(i%2), DefaultPenStyle(), Pt(0, y), Pt(30, y), Pt(60, y))
	}
	close(done)
	wg.Wait()

	if err := e.ForceFlush(); err != nil {
		t.Fatal(err)
	}
	if n := e.Snapshot().Len(Background) + e.Snapshot().Len(Foreground); n != 20 {
		t.Errorf("committed %d strokes, want 20", n)
	}
}
