// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/draw"

	"github.com/gogpu/gputypes"
)

// Target is the raster backing of one physical layer.
// Pixels are premultiplied RGBA, matching gputypes.TextureFormatRGBA8Unorm
// so a target can be uploaded to a texture without conversion.
type Target struct {
	layer Layer
	img   *image.RGBA
}

func newTarget(l Layer, width, height int) *Target {
	return &Target{
		layer: l,
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Layer returns the layer this target backs.
func (t *Target) Layer() Layer { return t.layer }

// Width returns the target width in pixels.
func (t *Target) Width() int { return t.img.Rect.Dx() }

// Height returns the target height in pixels.
func (t *Target) Height() int { return t.img.Rect.Dy() }

// Format returns the pixel format of the target.
func (t *Target) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Image returns the backing image. It is rewritten by the next frame that
// redraws this layer.
func (t *Target) Image() *image.RGBA { return t.img }

// clear resets every pixel to transparent.
func (t *Target) clear() {
	draw.Draw(t.img, t.img.Rect, image.Transparent, image.Point{}, draw.Src)
}
