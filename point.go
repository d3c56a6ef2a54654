package ink

import (
	"math"

	"github.com/gogpu/ink/internal/outline"
	"github.com/gogpu/ink/surface"
)

// Point is a position in logical (device-independent) pixels.
type Point = surface.Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func toOutline(p Point) outline.Point {
	return outline.Point{X: p.X, Y: p.Y}
}

func fromOutline(p outline.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
