package ink

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryOpenLookupRelease(t *testing.T) {
	r := NewRegistry()
	h := r.Open(WithColorScheme(Dark))
	if h == 0 {
		t.Fatal("Open() returned the zero handle")
	}
	e, err := r.Lookup(h)
	if err != nil {
		t.Fatalf("Lookup() = %v", err)
	}
	if e.ColorScheme() != Dark {
		t.Error("options not applied to the opened engine")
	}

	if err := r.Release(h); err != nil {
		t.Fatalf("Release() = %v", err)
	}
	if _, err := e.BeginStroke(Foreground, DefaultPenStyle()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("engine usable after Release: %v", err)
	}
	if _, err := r.Lookup(h); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Lookup(released) = %v, want ErrUnknownHandle", err)
	}
	if err := r.Release(h); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("second Release() = %v, want ErrUnknownHandle", err)
	}
}

func TestRegistryHandlesNotReused(t *testing.T) {
	r := NewRegistry()
	a := r.Open()
	_ = r.Release(a)
	b := r.Open()
	t.Cleanup(func() { _ = r.Release(b) })
	if a == b {
		t.Errorf("handle %d reused", a)
	}
	if _, err := r.Lookup(a); err == nil {
		t.Error("stale handle resolved to an engine")
	}
	if _, err := r.Lookup(0); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Lookup(0) = %v, want ErrUnknownHandle", err)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	handles := make([]Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles[i] = r.Open()
		}()
	}
	wg.Wait()

	seen := make(map[Handle]bool)
	for _, h := range handles {
		if seen[h] {
			t.Errorf("duplicate handle %d", h)
		}
		seen[h] = true
	}
	if r.Len() != len(handles) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(handles))
	}
	for _, h := range handles {
		if err := r.Release(h); err != nil {
			t.Errorf("Release(%d) = %v", h, err)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() after release = %d", r.Len())
	}
}

func TestDefaultRegistry(t *testing.T) {
	h := Open()
	if _, err := Lookup(h); err != nil {
		t.Fatalf("Lookup() = %v", err)
	}
	if err := Release(h); err != nil {
		t.Fatalf("Release() = %v", err)
	}
}
