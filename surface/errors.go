// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

var (
	// ErrSurfaceUnavailable is returned by Frame while the surface is
	// suspended, for example after the host was backgrounded. Redraw
	// requests keep accumulating and are served after Resume.
	ErrSurfaceUnavailable = errors.New("surface: surface unavailable")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrClosed is returned by operations on a closed Manager.
	ErrClosed = errors.New("surface: manager is closed")

	// ErrInvalidDrawContext is returned by GPUPresenter when it has no
	// texture drawer or the drawer cannot create textures.
	ErrInvalidDrawContext = errors.New("surface: draw context cannot create or draw textures")
)
