// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

// textureDestroyer matches the Destroy method of host textures.
type textureDestroyer interface {
	Destroy()
}

// GPUPresenter uploads frames to a host texture and draws it.
//
// The texture is created on the first frame and updated in place on later
// frames. After a resize the old texture is kept until the replacement
// has been created, because in-flight command buffers may still sample
// it.
//
// GPUPresenter is NOT safe for concurrent use; use it from the frame
// callback only.
type GPUPresenter struct {
	dc gpucontext.TextureDrawer

	// X, Y is where the frame is drawn.
	X, Y float32

	texture    any
	oldTexture any
	width      int
	height     int
}

// NewGPUPresenter returns a presenter without a draw context. Call Bind
// at the start of every frame.
func NewGPUPresenter() *GPUPresenter {
	return &GPUPresenter{}
}

// Bind sets the texture drawer for the current frame and returns p.
func (p *GPUPresenter) Bind(dc gpucontext.TextureDrawer) *GPUPresenter {
	p.dc = dc
	return p
}

// Present implements Presenter.
func (p *GPUPresenter) Present(frame *image.RGBA) error {
	if p.dc == nil {
		return ErrInvalidDrawContext
	}
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if p.texture != nil && (w != p.width || h != p.height) {
		p.retire()
	}

	if p.texture == nil {
		creator := p.dc.TextureCreator()
		if creator == nil {
			return ErrInvalidDrawContext
		}
		tex, err := creator.NewTextureFromRGBA(w, h, frame.Pix)
		if err != nil {
			return fmt.Errorf("surface: create texture %dx%d: %w", w, h, err)
		}
		var created any = tex
		// Frames are premultiplied.
		if pt, ok := created.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		p.texture = created
		p.width, p.height = w, h

		// Creation waits for the GPU, so the previous texture is idle now.
		p.destroyOld()
	} else if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(frame.Pix); err != nil {
			return fmt.Errorf("surface: texture update: %w", err)
		}
	}

	gpuTex, ok := p.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidDrawContext
	}
	return p.dc.DrawTexture(gpuTex, p.X, p.Y)
}

// Close destroys the textures. It is idempotent.
func (p *GPUPresenter) Close() error {
	p.destroyOld()
	if d, ok := p.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	p.texture = nil
	p.dc = nil
	return nil
}

func (p *GPUPresenter) retire() {
	p.destroyOld()
	p.oldTexture = p.texture
	p.texture = nil
}

func (p *GPUPresenter) destroyOld() {
	if d, ok := p.oldTexture.(textureDestroyer); ok {
		d.Destroy()
	}
	p.oldTexture = nil
}
