package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/gogpu/ink"
)

// Pad is a drawing surface backed by an ink.Engine.
type Pad struct {
	widget.BaseWidget

	engine *ink.Engine
	log    *slog.Logger

	erasing     bool
	eraseRadius float64

	open    bool
	handle  ink.StrokeHandle
	started time.Time
	last    fyne.Position

	// OnStatus receives one-line status messages.
	OnStatus func(string)
}

var _ fyne.Widget = (*Pad)(nil)
var _ fyne.Draggable = (*Pad)(nil)
var _ desktop.Mouseable = (*Pad)(nil)

// NewPad returns a pad drawing into e.
func NewPad(e *ink.Engine, eraseRadius float64, log *slog.Logger) *Pad {
	p := &Pad{engine: e, eraseRadius: eraseRadius, log: log}
	p.ExtendBaseWidget(p)
	return p
}

// SetErasing switches between drawing and erasing. An open stroke is
// committed first.
func (p *Pad) SetErasing(on bool) {
	p.finish()
	p.erasing = on
}

// MouseDown begins a stroke or an erase gesture.
func (p *Pad) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p.last = e.Position
	if p.erasing {
		p.erase(e.Position, e.Position)
		return
	}
	h, err := p.engine.BeginStrokeWithActiveTool()
	if err != nil {
		p.log.Warn("inkpad: begin stroke", slog.Any("err", err))
		return
	}
	p.open, p.handle, p.started = true, h, time.Now()
	p.record(e.Position)
}

// MouseUp commits the open stroke.
func (p *Pad) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p.finish()
}

// Dragged extends the open stroke or sweeps the eraser.
func (p *Pad) Dragged(e *fyne.DragEvent) {
	if p.erasing {
		p.erase(p.last, e.Position)
		p.last = e.Position
		return
	}
	if p.open {
		p.record(e.Position)
	}
}

// DragEnd commits the open stroke when the button is released outside
// the pad.
func (p *Pad) DragEnd() {
	p.finish()
}

func (p *Pad) record(pos fyne.Position) {
	s := ink.MouseSample{X: float64(pos.X), Y: float64(pos.Y), Time: time.Since(p.started)}
	if err := p.engine.RecordStrokeSample(p.handle, s); err != nil {
		p.log.Warn("inkpad: record sample", slog.Any("err", err))
		p.open = false
		return
	}
	p.Refresh()
}

func (p *Pad) finish() {
	if !p.open {
		return
	}
	p.open = false
	id, err := p.engine.EndStroke(p.handle)
	if err != nil {
		p.log.Warn("inkpad: end stroke", slog.Any("err", err))
	} else {
		p.log.Debug("inkpad: stroke committed", slog.String("id", id.String()))
	}
	p.Refresh()
}

func (p *Pad) erase(from, to fyne.Position) {
	hit := p.engine.Erase(ink.EraserPath{
		Points: []ink.Point{
			ink.Pt(float64(from.X), float64(from.Y)),
			ink.Pt(float64(to.X), float64(to.Y)),
		},
		Radius: p.eraseRadius,
	})
	if len(hit) > 0 {
		p.status(fmt.Sprintf("erased %d strokes", len(hit)))
		p.Refresh()
	}
}

func (p *Pad) status(msg string) {
	if p.OnStatus != nil {
		p.OnStatus(msg)
	}
}

// CreateRenderer implements fyne.Widget.
func (p *Pad) CreateRenderer() fyne.WidgetRenderer {
	r := &padRenderer{pad: p}
	r.raster = canvas.NewRaster(r.frame)
	return r
}

type padRenderer struct {
	pad    *Pad
	raster *canvas.Raster
}

// frame is called by fyne with the raster size in device pixels.
func (r *padRenderer) frame(w, h int) image.Image {
	img, err := r.pad.engine.Frame(w, h)
	if err != nil {
		r.pad.log.Debug("inkpad: frame", slog.Any("err", err))
		return image.NewUniform(color.Transparent)
	}
	return img
}

func (r *padRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
}

func (r *padRenderer) MinSize() fyne.Size {
	return fyne.NewSize(64, 64)
}

func (r *padRenderer) Refresh() {
	r.raster.Refresh()
}

func (r *padRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *padRenderer) Destroy() {}
