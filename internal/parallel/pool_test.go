package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Create(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			t.Cleanup(pool.Close)
			if pool.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", pool.Workers(), tt.want)
			}
			if !pool.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	t.Cleanup(pool.Close)

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)
	if got := counter.Load(); got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
	pool.ExecuteAll(nil)
}

func TestWorkerPool_ExecuteAllUnevenJobs(t *testing.T) {
	pool := NewWorkerPool(2)
	t.Cleanup(pool.Close)

	var counter atomic.Int64
	work := []func(){
		func() { time.Sleep(20 * time.Millisecond); counter.Add(1) },
	}
	for range 20 {
		work = append(work, func() { counter.Add(1) })
	}
	pool.ExecuteAll(work)
	if got := counter.Load(); got != 21 {
		t.Errorf("counter = %d, want 21", got)
	}
}

func TestWorkerPool_SubmitAndWait(t *testing.T) {
	pool := NewWorkerPool(3)
	t.Cleanup(pool.Close)

	var counter atomic.Int64
	for range 50 {
		pool.Submit(func() {
			time.Sleep(time.Millisecond)
			counter.Add(1)
		})
	}
	pool.Wait()
	if got := counter.Load(); got != 50 {
		t.Errorf("counter after Wait = %d, want 50", got)
	}
	if pool.QueuedWork() != 0 {
		t.Errorf("QueuedWork() = %d after Wait", pool.QueuedWork())
	}
	pool.Submit(nil)
	pool.Wait()
}

func TestWorkerPool_WaitIdle(t *testing.T) {
	pool := NewWorkerPool(1)
	t.Cleanup(pool.Close)

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait on an idle pool blocked")
	}
}

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	for range 10 {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("pool still running after Close")
	}
	if got := counter.Load(); got != 10 {
		t.Errorf("queued work lost on Close: counter = %d, want 10", got)
	}

	pool.Submit(func() { counter.Add(1) })
	if got := counter.Load(); got != 10 {
		t.Error("Submit on a closed pool ran work")
	}

	ran := false
	pool.ExecuteAll([]func(){func() { ran = true }})
	if !ran {
		t.Error("ExecuteAll on a closed pool should run inline")
	}
}
