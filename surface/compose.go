// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
)

// Compositor blends the layer targets into the final image.
//
// layers are given back to front and all have dst's size. Implementations
// must produce the result of drawing each layer over the previous ones.
type Compositor interface {
	Composite(dst *image.RGBA, layers []*image.RGBA) error
}

// CPUCompositor composites with image/draw. It is the default and the
// fallback for accelerated compositors.
type CPUCompositor struct{}

// Composite implements Compositor.
func (CPUCompositor) Composite(dst *image.RGBA, layers []*image.RGBA) error {
	draw.Draw(dst, dst.Rect, image.Transparent, image.Point{}, draw.Src)
	for i, l := range layers {
		if !l.Rect.Eq(dst.Rect) {
			return fmt.Errorf("surface: layer %d is %v, want %v", i, l.Rect, dst.Rect)
		}
		draw.Draw(dst, dst.Rect, l, image.Point{}, draw.Over)
	}
	return nil
}

// fallbackCompositor tries primary and falls back to the CPU on error.
type fallbackCompositor struct {
	primary Compositor
	warned  bool
}

func (f *fallbackCompositor) Composite(dst *image.RGBA, layers []*image.RGBA) error {
	err := f.primary.Composite(dst, layers)
	if err == nil {
		return nil
	}
	if !f.warned {
		Logger().Warn("surface: compositor failed, using CPU", slog.Any("err", err))
		f.warned = true
	}
	return CPUCompositor{}.Composite(dst, layers)
}
