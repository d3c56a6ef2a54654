// Package ink is a freehand stroke capture and rendering engine.
//
// # Overview
//
// ink turns raw pointer samples (position, optional pressure, time) into
// smooth, pressure-thinned vector strokes and rasterises them lazily into
// four physical layers:
//
//	BackgroundStatic   committed background strokes
//	BackgroundActive   the background stroke being drawn
//	ForegroundStatic   committed foreground strokes
//	ForegroundActive   the foreground stroke being drawn
//
// Layers are composited back to front in that order, and strokes within a
// layer are painted in commit order.
//
// # Quick Start
//
//	e := ink.New()
//	defer e.Close()
//
//	style := ink.DefaultPenStyle().WithSize(6).WithThinning(0.6)
//	h, _ := e.BeginStroke(ink.Foreground, style)
//	e.RecordStrokeSample(h, ink.MouseSample{X: 10, Y: 10})
//	e.RecordStrokeSample(h, ink.MouseSample{X: 40, Y: 25, Time: 8 * time.Millisecond})
//	id, _ := e.EndStroke(h)
//
//	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
//	_ = e.Draw(surface.NewImagePresenter(img), 800, 600)
//
// # Concurrency
//
// Input methods (BeginStroke, RecordStrokeSample, EndStroke, AbortStroke)
// run synchronously on the caller's goroutine and never rasterise. Draw may
// be called from a separate frame goroutine: it only reads immutable
// snapshots that writers publish with a single atomic swap, so a frame never
// observes a half-committed stroke.
//
// # Host integration
//
// The host owns windowing, GPU device creation and persistence. Hosts that
// need an opaque handle instead of a Go pointer can use Open, Lookup and
// Release. See cmd/inkpad for a desktop reference host.
package ink
