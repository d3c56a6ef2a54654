package ink

import (
	"errors"

	"github.com/gogpu/ink/surface"
)

var (
	// ErrStrokeAlreadyInProgress is returned when a stroke is begun on a
	// layer that already has an open stroke. End or abort it first.
	ErrStrokeAlreadyInProgress = errors.New("ink: stroke already in progress")

	// ErrInvalidSample is returned for samples with NaN or infinite
	// coordinates or pressure. The sample is dropped; the stroke continues.
	ErrInvalidSample = errors.New("ink: invalid sample")

	// ErrEmptyStroke is returned when a stroke ends without any valid
	// sample. It produces no geometry.
	ErrEmptyStroke = errors.New("ink: empty stroke")

	// ErrUnknownStroke is returned for stale or foreign stroke handles.
	ErrUnknownStroke = errors.New("ink: unknown stroke")

	// ErrEngineClosed is returned by operations on a closed Engine.
	ErrEngineClosed = errors.New("ink: engine is closed")

	// ErrUnknownHandle is returned by Lookup and Release for handles that
	// were never issued or were already released.
	ErrUnknownHandle = errors.New("ink: unknown engine handle")
)

// ErrSurfaceUnavailable is returned by drawing operations while the
// surface is lost. Redraw requests are kept until it is restored.
var ErrSurfaceUnavailable = surface.ErrSurfaceUnavailable
