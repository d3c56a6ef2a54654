package ink

import (
	"fmt"

	"github.com/gogpu/ink/surface"
)

// Layer is the logical placement of a stroke.
type Layer uint8

const (
	// Background strokes draw beneath all foreground strokes.
	Background Layer = iota
	// Foreground strokes draw above all background strokes.
	Foreground

	layerCount
)

// Layers returns the logical layers back to front.
func Layers() []Layer {
	return []Layer{Background, Foreground}
}

// Valid reports whether l is a known layer.
func (l Layer) Valid() bool {
	return l < layerCount
}

// String returns "background" or "foreground".
func (l Layer) String() string {
	switch l {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	}
	return fmt.Sprintf("Layer(%d)", uint8(l))
}

// Static returns the raster target for committed strokes of l.
func (l Layer) Static() PhysicalLayer {
	if l == Foreground {
		return ForegroundStatic
	}
	return BackgroundStatic
}

// Active returns the raster target for the in-progress stroke of l.
func (l Layer) Active() PhysicalLayer {
	if l == Foreground {
		return ForegroundActive
	}
	return BackgroundActive
}

// PhysicalLayer is one of the four raster targets.
type PhysicalLayer = surface.Layer

// Physical layers in z-order, back to front.
const (
	BackgroundStatic = surface.BackgroundStatic
	BackgroundActive = surface.BackgroundActive
	ForegroundStatic = surface.ForegroundStatic
	ForegroundActive = surface.ForegroundActive
)

func logicalLayer(p PhysicalLayer) Layer {
	if p.Foreground() {
		return Foreground
	}
	return Background
}
