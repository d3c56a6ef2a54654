// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

// Executor runs independent functions, possibly in parallel, and returns
// when all of them have finished.
type Executor interface {
	ExecuteAll(work []func())
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	scale      float64
	compositor Compositor
	executor   Executor
}

func defaultOptions() options {
	return options{
		scale:      1,
		compositor: CPUCompositor{},
	}
}

// WithScale sets the device-pixel ratio. Logical coordinates are
// multiplied by scale before rasterisation. Values <= 0 are ignored.
func WithScale(scale float64) Option {
	return func(o *options) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithCompositor sets the layer compositor. Errors from c fall back to
// CPU compositing for that frame.
func WithCompositor(c Compositor) Option {
	return func(o *options) {
		if c == nil {
			o.compositor = CPUCompositor{}
			return
		}
		if _, ok := c.(CPUCompositor); ok {
			o.compositor = c
			return
		}
		o.compositor = &fallbackCompositor{primary: c}
	}
}

// WithExecutor rasterises dirty layers through e instead of one after
// another.
func WithExecutor(e Executor) Option {
	return func(o *options) {
		o.executor = e
	}
}
