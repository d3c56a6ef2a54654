// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/vector"
)

// Canvas draws into one layer target during a frame.
//
// Coordinates are logical pixels; the canvas applies the manager's scale.
// Filled outlines go through an anti-aliasing coverage rasteriser. Cheap
// polylines for in-progress strokes are drawn with a 2D path stroker.
//
// A Canvas is only valid inside Scene.PaintLayer.
type Canvas struct {
	img   *image.RGBA
	scale float64
	ras   *vector.Rasterizer
}

func newCanvas(img *image.RGBA, scale float64) *Canvas {
	b := img.Bounds()
	return &Canvas{
		img:   img,
		scale: scale,
		ras:   vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// Bounds returns the target bounds in device pixels.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Scale returns the logical-to-device pixel ratio.
func (c *Canvas) Scale() float64 {
	return c.scale
}

// FillPolygon fills a closed polygon. The closing edge is implicit.
// Polygons entirely outside the target are skipped.
func (c *Canvas) FillPolygon(pts []Point, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 || !c.visible(pts, 0) {
		return
	}
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	c.ras.DrawOp = draw.Over

	s := c.scale
	c.ras.MoveTo(float32(pts[0].X*s), float32(pts[0].Y*s))
	for _, p := range pts[1:] {
		c.ras.LineTo(float32(p.X*s), float32(p.Y*s))
	}
	c.ras.ClosePath()
	c.ras.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// FillCircle fills a circle of radius r around center.
func (c *Canvas) FillCircle(center Point, r float64, col color.NRGBA) {
	if r <= 0 || col.A == 0 || !c.visible([]Point{center}, r) {
		return
	}
	dc := gg.NewContextForRGBA(c.img)
	dc.SetColor(col)
	dc.DrawCircle(center.X*c.scale, center.Y*c.scale, r*c.scale)
	dc.Fill()
}

// StrokePolyline strokes pts with round joins and caps. A single point
// draws a dot of the same width.
func (c *Canvas) StrokePolyline(pts []Point, width float64, col color.NRGBA) {
	if len(pts) == 0 || width <= 0 || col.A == 0 {
		return
	}
	if len(pts) == 1 {
		c.FillCircle(pts[0], width/2, col)
		return
	}
	if !c.visible(pts, width/2) {
		return
	}
	dc := gg.NewContextForRGBA(c.img)
	dc.SetColor(col)
	dc.SetLineWidth(width * c.scale)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	s := c.scale
	dc.MoveTo(pts[0].X*s, pts[0].Y*s)
	for _, p := range pts[1:] {
		dc.LineTo(p.X*s, p.Y*s)
	}
	dc.Stroke()
}

// visible reports whether the box around pts grown by pad intersects the
// target.
func (c *Canvas) visible(pts []Point, pad float64) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	s := c.scale
	b := c.img.Bounds()
	return (maxX+pad)*s >= float64(b.Min.X) && (minX-pad)*s <= float64(b.Max.X) &&
		(maxY+pad)*s >= float64(b.Min.Y) && (minY-pad)*s <= float64(b.Max.Y)
}
