// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/draw"
)

// Presenter shows a finished frame. The image is owned by the caller and
// is only valid for the duration of Present.
type Presenter interface {
	Present(frame *image.RGBA) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(frame *image.RGBA) error

// Present implements Presenter.
func (f PresenterFunc) Present(frame *image.RGBA) error { return f(frame) }

// ImagePresenter copies frames into a host-owned image.
type ImagePresenter struct {
	dst draw.Image
}

// NewImagePresenter returns a presenter that copies into dst. Frames
// larger than dst are cropped.
func NewImagePresenter(dst draw.Image) *ImagePresenter {
	return &ImagePresenter{dst: dst}
}

// Present implements Presenter.
func (p *ImagePresenter) Present(frame *image.RGBA) error {
	b := p.dst.Bounds()
	draw.Draw(p.dst, b, frame, frame.Rect.Min, draw.Src)
	return nil
}

// Image returns the destination image.
func (p *ImagePresenter) Image() draw.Image {
	return p.dst
}
