// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"math"
)

// Point represents a 2D point in logical pixels.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Layer identifies one of the four raster targets.
// The numeric order is the compositing order, back to front.
type Layer uint8

const (
	// BackgroundStatic holds committed background strokes.
	BackgroundStatic Layer = iota
	// BackgroundActive holds the background stroke being drawn.
	BackgroundActive
	// ForegroundStatic holds committed foreground strokes.
	ForegroundStatic
	// ForegroundActive holds the foreground stroke being drawn.
	ForegroundActive

	// LayerCount is the number of physical layers.
	LayerCount = 4
)

// Layers returns all layers in z-order, back to front.
func Layers() []Layer {
	return []Layer{BackgroundStatic, BackgroundActive, ForegroundStatic, ForegroundActive}
}

// Valid reports whether l is a known layer.
func (l Layer) Valid() bool {
	return l < LayerCount
}

// Foreground reports whether l belongs to the foreground pair.
func (l Layer) Foreground() bool {
	return l == ForegroundStatic || l == ForegroundActive
}

// Active reports whether l holds an in-progress stroke.
func (l Layer) Active() bool {
	return l == BackgroundActive || l == ForegroundActive
}

// String returns a human-readable layer name.
func (l Layer) String() string {
	switch l {
	case BackgroundStatic:
		return "background-static"
	case BackgroundActive:
		return "background-active"
	case ForegroundStatic:
		return "foreground-static"
	case ForegroundActive:
		return "foreground-active"
	}
	return fmt.Sprintf("Layer(%d)", uint8(l))
}

func (l Layer) bit() uint32 {
	return 1 << l
}

const allLayers uint32 = 1<<LayerCount - 1
