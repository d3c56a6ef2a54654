package ink

import (
	"github.com/gogpu/ink/surface"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e := ink.New(
//	    ink.WithInitialTool(ink.DefaultPenStyle().WithSize(3)),
//	    ink.WithEraseStrategy(ink.SplitStroke),
//	    ink.WithWorkers(4),
//	    ink.WithDeferredOutlines(true),
//	)
type Option func(*engineOptions)

type engineOptions struct {
	tool           PenStyle
	historySize    int
	scheme         ColorScheme
	erase          EraseStrategy
	workers        int
	deferOutlines  bool
	surfaceOptions []surface.Option
	gpu            HalProvider
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		tool:        DefaultPenStyle(),
		historySize: DefaultHistorySize,
		scheme:      Light,
		erase:       WholeStroke,
	}
}

// WithInitialTool sets the current pen at creation.
func WithInitialTool(style PenStyle) Option {
	return func(o *engineOptions) {
		o.tool = style
	}
}

// WithToolHistory bounds the pen history. Values below one use
// DefaultHistorySize.
func WithToolHistory(n int) Option {
	return func(o *engineOptions) {
		o.historySize = n
	}
}

// WithColorScheme sets the initial color scheme.
func WithColorScheme(s ColorScheme) Option {
	return func(o *engineOptions) {
		o.scheme = s
	}
}

// WithEraseStrategy sets how Erase treats strokes it touches.
// The default is WholeStroke.
func WithEraseStrategy(s EraseStrategy) Option {
	return func(o *engineOptions) {
		if s != nil {
			o.erase = s
		}
	}
}

// WithWorkers starts a worker pool of n goroutines used to rasterise dirty
// layers concurrently and, with WithDeferredOutlines, to build outlines
// in the background. n <= 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *engineOptions) {
		o.workers = n
		if n <= 0 {
			o.workers = -1
		}
	}
}

// WithDeferredOutlines builds the outline of each committed stroke on the
// worker pool instead of on first draw. It implies WithWorkers(0) when no
// pool was requested.
func WithDeferredOutlines(on bool) Option {
	return func(o *engineOptions) {
		o.deferOutlines = on
	}
}

// WithScale sets the device-pixel ratio used for rasterisation.
func WithScale(scale float64) Option {
	return func(o *engineOptions) {
		o.surfaceOptions = append(o.surfaceOptions, surface.WithScale(scale))
	}
}

// WithCompositor installs a custom layer compositor.
func WithCompositor(c surface.Compositor) Option {
	return func(o *engineOptions) {
		o.surfaceOptions = append(o.surfaceOptions, surface.WithCompositor(c))
	}
}

// HalProvider exposes a host-owned GPU device and queue. The concrete
// values are wgpu hal.Device and hal.Queue.
type HalProvider interface {
	HalDevice() any
	HalQueue() any
}

// WithGPUCompositor composites layers on the host's GPU device. If the
// compositor cannot be created, or fails on a frame, the CPU is used.
func WithGPUCompositor(p HalProvider) Option {
	return func(o *engineOptions) {
		o.gpu = p
	}
}
