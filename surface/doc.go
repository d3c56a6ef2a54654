// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface owns the raster targets of the four physical stroke
// layers and turns layer content into frames.
//
// # Layers
//
// Every frame is composited back to front:
//
//	BackgroundStatic, BackgroundActive, ForegroundStatic, ForegroundActive
//
// Each layer has its own *image.RGBA target. A layer is only rasterised
// when it has been marked dirty with RequestRedraw, and only inside Frame
// or RenderLayer, which the host calls from its frame clock.
//
// # Resizing
//
// Resize recreates all targets and marks every layer dirty. Content is
// redrawn from the scene's vector geometry, so strokes that were off
// screen before a resize appear once they are in bounds.
//
// # Presenting
//
// Frames are handed to a Presenter:
//
//   - ImagePresenter copies into a host-owned image (software hosts, tests)
//   - GPUPresenter uploads into a host texture via gpucontext
//
// # Compositing
//
// The default CPUCompositor blends with image/draw. Hosts with a GPU can
// install an accelerated Compositor with WithCompositor; any error from it
// falls back to the CPU for that frame.
package surface
