package ink

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handle is an opaque engine reference for hosts that cannot hold Go
// pointers, such as a foreign-function boundary. The zero Handle is never
// issued.
type Handle uint64

// globalEngines is the default registry.
var globalEngines = NewRegistry()

// Registry maps handles to engines owned by a host.
//
// Handles are never reused within a Registry, so a released handle stays
// invalid even after new engines are opened.
type Registry struct {
	mu      sync.RWMutex
	next    Handle
	engines map[Handle]*Engine
}

// NewRegistry returns an empty registry. Most hosts use the package-level
// Open, Lookup and Release.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[Handle]*Engine)}
}

// Open creates an engine and returns its handle.
func (r *Registry) Open(opts ...Option) Handle {
	e := New(opts...)

	r.mu.Lock()
	r.next++
	h := r.next
	r.engines[h] = e
	r.mu.Unlock()

	Logger().Info("ink: engine opened", slog.Uint64("handle", uint64(h)))
	return h
}

// Lookup returns the engine for h.
func (r *Registry) Lookup(h Handle) (*Engine, error) {
	r.mu.RLock()
	e, ok := r.engines[h]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, uint64(h))
	}
	return e, nil
}

// Release removes h and closes its engine.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	e, ok := r.engines[h]
	delete(r.engines, h)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, uint64(h))
	}
	Logger().Info("ink: engine released", slog.Uint64("handle", uint64(h)))
	return e.Close()
}

// Len returns the number of open engines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// Open creates an engine in the default registry.
func Open(opts ...Option) Handle {
	return globalEngines.Open(opts...)
}

// Lookup finds an engine in the default registry.
func Lookup(h Handle) (*Engine, error) {
	return globalEngines.Lookup(h)
}

// Release closes an engine in the default registry.
func Release(h Handle) error {
	return globalEngines.Release(h)
}
