package main

import (
	"io"
	"log/slog"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"github.com/gogpu/ink"
)

func newTestPad(t *testing.T) (*Pad, *ink.Engine) {
	t.Helper()
	test.NewTempApp(t)
	e := ink.New()
	t.Cleanup(func() { _ = e.Close() })
	p := NewPad(e, 6, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.Resize(fyne.NewSize(200, 200))
	return p, e
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func countStrokes(e *ink.Engine) int {
	n := 0
	for _, l := range ink.Layers() {
		for range e.StrokesInLayer(l) {
			n++
		}
	}
	return n
}

func TestPadDrawsStroke(t *testing.T) {
	p, e := newTestPad(t)

	p.MouseDown(press(10, 10))
	for x := float32(20); x <= 100; x += 10 {
		p.Dragged(drag(x, 10))
	}
	if countStrokes(e) != 0 {
		t.Fatal("stroke committed before release")
	}
	p.MouseUp(press(100, 10))

	if got := countStrokes(e); got != 1 {
		t.Fatalf("strokes = %d, want 1", got)
	}
}

func TestPadDragEndCommits(t *testing.T) {
	p, e := newTestPad(t)

	p.MouseDown(press(10, 10))
	p.Dragged(drag(50, 50))
	p.DragEnd()
	p.MouseUp(press(50, 50))

	if got := countStrokes(e); got != 1 {
		t.Fatalf("strokes = %d, want 1", got)
	}
}

func TestPadIgnoresSecondaryButton(t *testing.T) {
	p, e := newTestPad(t)

	ev := press(10, 10)
	ev.Button = desktop.MouseButtonSecondary
	p.MouseDown(ev)
	p.Dragged(drag(50, 10))
	p.MouseUp(ev)

	if got := countStrokes(e); got != 0 {
		t.Fatalf("strokes = %d, want 0", got)
	}
}

func TestPadErase(t *testing.T) {
	p, e := newTestPad(t)

	p.MouseDown(press(10, 50))
	p.Dragged(drag(190, 50))
	p.MouseUp(press(190, 50))

	var msg string
	p.OnStatus = func(s string) { msg = s }
	p.SetErasing(true)
	p.MouseDown(press(100, 10))
	p.Dragged(drag(100, 90))
	p.MouseUp(press(100, 90))

	if got := countStrokes(e); got != 0 {
		t.Fatalf("strokes after erase = %d, want 0", got)
	}
	if msg != "erased 1 strokes" {
		t.Errorf("status = %q", msg)
	}
}

func TestPadRenderer(t *testing.T) {
	p, _ := newTestPad(t)
	r := test.WidgetRenderer(p)
	if len(r.Objects()) != 1 {
		t.Fatalf("objects = %d, want 1", len(r.Objects()))
	}
	pr := r.(*padRenderer)
	img := pr.frame(40, 30)
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("frame bounds = %v", b)
	}
}
