// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func newTestCanvas(w, h int, scale float64) (*Canvas, *image.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return newCanvas(img, scale), img
}

func TestCanvasFillPolygon(t *testing.T) {
	c, img := newTestCanvas(20, 20, 1)
	c.FillPolygon(rect(5, 5, 15, 15), red)

	tests := []struct {
		x, y    int
		covered bool
	}{
		{10, 10, true},
		{6, 6, true},
		{2, 2, false},
		{18, 10, false},
	}
	for _, tt := range tests {
		got := img.RGBAAt(tt.x, tt.y)
		if tt.covered && got != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("pixel (%d,%d) = %v, want red", tt.x, tt.y, got)
		}
		if !tt.covered && got.A != 0 {
			t.Errorf("pixel (%d,%d) = %v, want transparent", tt.x, tt.y, got)
		}
	}
}

func TestCanvasScale(t *testing.T) {
	c, img := newTestCanvas(40, 40, 2)
	c.FillPolygon(rect(5, 5, 15, 15), red)
	if got := img.RGBAAt(25, 25); got.R != 255 {
		t.Errorf("scaled pixel (25,25) = %v, want red", got)
	}
	if got := img.RGBAAt(35, 35); got.A != 0 {
		t.Errorf("pixel (35,35) = %v, want transparent", got)
	}
	if c.Scale() != 2 {
		t.Errorf("Scale() = %v", c.Scale())
	}
}

func TestCanvasSkipsDegenerate(t *testing.T) {
	c, img := newTestCanvas(10, 10, 1)
	c.FillPolygon([]Point{{1, 1}, {5, 5}}, red)
	c.FillPolygon(rect(0, 0, 10, 10), color.NRGBA{R: 255})
	c.StrokePolyline(nil, 2, red)
	c.StrokePolyline([]Point{{1, 1}, {5, 5}}, 0, red)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("degenerate draws must not touch pixels")
		}
	}
}

func TestCanvasStrokePolyline(t *testing.T) {
	c, img := newTestCanvas(30, 30, 1)
	c.StrokePolyline([]Point{{5, 15}, {25, 15}}, 6, blue)
	if got := img.RGBAAt(15, 15); got.B != 255 || got.A != 255 {
		t.Errorf("pixel on line = %v, want blue", got)
	}
	if got := img.RGBAAt(15, 25); got.A != 0 {
		t.Errorf("pixel off line = %v, want transparent", got)
	}
}

func TestCanvasSinglePointPolylineIsDot(t *testing.T) {
	c, img := newTestCanvas(20, 20, 1)
	c.StrokePolyline([]Point{{10, 10}}, 8, green)
	if got := img.RGBAAt(10, 10); got.G != 255 || got.A != 255 {
		t.Errorf("dot center = %v, want green", got)
	}
	if got := img.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("pixel outside dot = %v, want transparent", got)
	}
}

func TestCanvasOffscreenSkipped(t *testing.T) {
	c, img := newTestCanvas(10, 10, 1)
	c.FillPolygon(rect(100, 100, 120, 120), red)
	c.FillCircle(Pt(-50, -50), 5, red)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("offscreen shapes must not touch pixels")
		}
	}
}

func TestLayerOrderAndNames(t *testing.T) {
	got := Layers()
	want := []Layer{BackgroundStatic, BackgroundActive, ForegroundStatic, ForegroundActive}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Layers() = %v, want %v", got, want)
		}
	}
	tests := []struct {
		l          Layer
		name       string
		foreground bool
		active     bool
	}{
		{BackgroundStatic, "background-static", false, false},
		{BackgroundActive, "background-active", false, true},
		{ForegroundStatic, "foreground-static", true, false},
		{ForegroundActive, "foreground-active", true, true},
	}
	for _, tt := range tests {
		if tt.l.String() != tt.name || tt.l.Foreground() != tt.foreground || tt.l.Active() != tt.active {
			t.Errorf("%v: got (%q, %v, %v)", tt.l, tt.l.String(), tt.l.Foreground(), tt.l.Active())
		}
	}
	if Layer(7).Valid() {
		t.Error("Layer(7).Valid() = true")
	}
}

func TestTargetFormat(t *testing.T) {
	tg := newTarget(ForegroundStatic, 3, 2)
	if tg.Width() != 3 || tg.Height() != 2 {
		t.Errorf("size = %dx%d", tg.Width(), tg.Height())
	}
	if tg.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", tg.Format())
	}
}

func TestImagePresenterCrops(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frame.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := NewImagePresenter(dst).Present(frame); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(1, 1); got.R != 255 {
		t.Errorf("dst pixel = %v, want red", got)
	}
}

func TestGPUPresenterRequiresDrawContext(t *testing.T) {
	p := NewGPUPresenter()
	err := p.Present(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if err != ErrInvalidDrawContext {
		t.Errorf("Present() without Bind = %v, want ErrInvalidDrawContext", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
