package ink

import (
	"sync"
)

// DefaultHistorySize is the number of styles ToolState remembers.
const DefaultHistorySize = 8

// ToolState is the current pen register plus a short most-recent-first
// history for pen pickers.
//
// Strokes copy the current style when they begin, so Set never affects a
// stroke that has already started.
type ToolState struct {
	mu       sync.RWMutex
	current  PenStyle
	history  []PenStyle
	capacity int
}

// NewToolState returns a ToolState holding initial. A capacity below one
// uses DefaultHistorySize.
func NewToolState(initial PenStyle, capacity int) *ToolState {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &ToolState{
		current:  initial,
		history:  []PenStyle{initial},
		capacity: capacity,
	}
}

// Current returns a copy of the current style.
func (t *ToolState) Current() PenStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Set makes style current and moves it to the front of the history.
func (t *ToolState) Set(style PenStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = style
	h := make([]PenStyle, 0, t.capacity)
	h = append(h, style)
	for _, s := range t.history {
		if len(h) == t.capacity {
			break
		}
		if s != style {
			h = append(h, s)
		}
	}
	t.history = h
}

// History returns recently used styles, most recent first. The current
// style is always first.
func (t *ToolState) History() []PenStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]PenStyle(nil), t.history...)
}

// Capacity returns the history bound.
func (t *ToolState) Capacity() int {
	return t.capacity
}
