package ink

import (
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable view of every layer at one point in time.
// Readers hold a Snapshot for as long as they need without locking.
type Snapshot struct {
	static  [layerCount][]*Stroke
	active  [layerCount]*Stroke
	version uint64
}

// Version increases with every published change.
func (s *Snapshot) Version() uint64 { return s.version }

// Len returns the number of committed strokes on l.
func (s *Snapshot) Len(l Layer) int {
	if !l.Valid() {
		return 0
	}
	return len(s.static[l])
}

// Active returns the in-progress stroke of l, or nil.
func (s *Snapshot) Active(l Layer) *Stroke {
	if !l.Valid() {
		return nil
	}
	return s.active[l]
}

// StrokesInLayer iterates over the committed strokes of l in commit order.
// The sequence is finite and can be ranged over any number of times.
func (s *Snapshot) StrokesInLayer(l Layer) iter.Seq[*Stroke] {
	return func(yield func(*Stroke) bool) {
		if !l.Valid() {
			return
		}
		for _, st := range s.static[l] {
			if !yield(st) {
				return
			}
		}
	}
}

// Stroke returns the committed stroke with the given id.
func (s *Snapshot) Stroke(id StrokeID) (*Stroke, bool) {
	for _, list := range s.static {
		for _, st := range list {
			if st.id == id {
				return st, true
			}
		}
	}
	return nil, false
}

// Compositor owns the committed stroke lists and the active previews.
//
// Writers are serialized and publish a new Snapshot with a single atomic
// swap; a change is either fully visible or not at all.
type Compositor struct {
	mu       sync.Mutex
	snap     atomic.Pointer[Snapshot]
	strategy EraseStrategy

	// onChange is told which physical layers need a redraw.
	onChange func(PhysicalLayer)
}

// NewCompositor returns an empty compositor using WholeStroke erasing.
func NewCompositor() *Compositor {
	c := &Compositor{strategy: WholeStroke}
	c.snap.Store(&Snapshot{})
	return c
}

// SetEraseStrategy replaces the strategy used by Erase. Nil restores
// WholeStroke.
func (c *Compositor) SetEraseStrategy(s EraseStrategy) {
	if s == nil {
		s = WholeStroke
	}
	c.mu.Lock()
	c.strategy = s
	c.mu.Unlock()
}

// Snapshot returns the current immutable view.
func (c *Compositor) Snapshot() *Snapshot {
	return c.snap.Load()
}

// StrokesInLayer iterates over the committed strokes of l as of the call.
func (c *Compositor) StrokesInLayer(l Layer) iter.Seq[*Stroke] {
	return c.Snapshot().StrokesInLayer(l)
}

// Len returns the number of committed strokes on l.
func (c *Compositor) Len(l Layer) int {
	return c.Snapshot().Len(l)
}

// Stroke looks up a committed stroke.
func (c *Compositor) Stroke(id StrokeID) (*Stroke, bool) {
	return c.Snapshot().Stroke(id)
}

// SetActive publishes s as the in-progress preview of its layer.
func (c *Compositor) SetActive(s *Stroke) {
	c.update(func(next *Snapshot) []PhysicalLayer {
		next.active[s.layer] = s
		return []PhysicalLayer{s.layer.Active()}
	})
}

// ClearActive removes the preview of l.
func (c *Compositor) ClearActive(l Layer) {
	c.update(func(next *Snapshot) []PhysicalLayer {
		if next.active[l] == nil {
			return nil
		}
		next.active[l] = nil
		return []PhysicalLayer{l.Active()}
	})
}

// Commit appends a finished stroke to the static list of its layer and
// removes the layer's preview in the same swap.
func (c *Compositor) Commit(s *Stroke) (StrokeID, error) {
	if s == nil || s.Len() == 0 {
		return StrokeID{}, ErrEmptyStroke
	}
	if !s.complete {
		return StrokeID{}, fmt.Errorf("ink: commit of unfinished stroke %s", s.id)
	}
	c.update(func(next *Snapshot) []PhysicalLayer {
		l := s.layer
		next.static[l] = appendShared(next.static[l], s)
		dirty := []PhysicalLayer{l.Static()}
		if a := next.active[l]; a != nil && a.id == s.id {
			next.active[l] = nil
			dirty = append(dirty, l.Active())
		}
		return dirty
	})
	Logger().Debug("ink: stroke committed",
		slog.String("id", s.id.String()),
		slog.String("layer", s.layer.String()),
		slog.Int("samples", s.Len()))
	return s.id, nil
}

// Erase removes or clips committed strokes along path according to the
// erase strategy. It returns the ids of the strokes that were hit, in
// layer and commit order.
func (c *Compositor) Erase(path EraserPath) []StrokeID {
	var hit []StrokeID
	c.update(func(next *Snapshot) []PhysicalLayer {
		var dirty []PhysicalLayer
		for _, l := range Layers() {
			if !path.appliesTo(l) || len(next.static[l]) == 0 {
				continue
			}
			var out []*Stroke
			changed := false
			for i, st := range next.static[l] {
				ok, remains := c.strategy.Erase(st, path)
				if !ok {
					if changed {
						out = append(out, st)
					}
					continue
				}
				if !changed {
					out = append(make([]*Stroke, 0, len(next.static[l])), next.static[l][:i]...)
					changed = true
				}
				hit = append(hit, st.id)
				out = append(out, remains...)
			}
			if changed {
				next.static[l] = out[:len(out):len(out)]
				dirty = append(dirty, l.Static())
			}
		}
		return dirty
	})
	if len(hit) > 0 {
		Logger().Debug("ink: strokes erased", slog.Int("count", len(hit)))
	}
	return hit
}

// Clear removes every committed stroke of l.
func (c *Compositor) Clear(l Layer) int {
	n := 0
	c.update(func(next *Snapshot) []PhysicalLayer {
		n = len(next.static[l])
		if n == 0 {
			return nil
		}
		next.static[l] = nil
		return []PhysicalLayer{l.Static()}
	})
	return n
}

// update copies the current snapshot, applies fn and publishes the copy
// if fn reports any changed layer.
func (c *Compositor) update(fn func(next *Snapshot) []PhysicalLayer) {
	c.mu.Lock()
	cur := c.snap.Load()
	next := *cur
	dirty := fn(&next)
	if len(dirty) == 0 {
		c.mu.Unlock()
		return
	}
	next.version = cur.version + 1
	c.snap.Store(&next)
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		for _, pl := range dirty {
			notify(pl)
		}
	}
}

// appendShared appends s to a published list. Published lists are
// capacity-limited, so append never writes into memory a reader can see.
func appendShared(list []*Stroke, s *Stroke) []*Stroke {
	out := append(list, s)
	return out[:len(out):len(out)]
}
