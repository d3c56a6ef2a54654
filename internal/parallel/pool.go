// Package parallel runs engine background work: deferred outline builds
// for committed strokes and concurrent rasterisation of dirty layers.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines fed from per-worker queues.
//
// An idle worker steals from the other queues before blocking, so one
// slow job (a long stroke outline) does not hold up the rest.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// inflight counts queued and running jobs; idle is signalled when it
	// drops to zero.
	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	next     atomic.Uint32
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(8, workers*4)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mu)
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case job := <-own:
			job()
			continue
		case <-p.done:
			p.drain(own)
			return
		default:
		}
		if job := p.steal(id); job != nil {
			job()
			continue
		}
		select {
		case job := <-own:
			job()
		case <-p.done:
			p.drain(own)
			return
		}
	}
}

func (p *WorkerPool) drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case job := <-p.queues[(id+i)%p.workers]:
			return job
		default:
		}
	}
	return nil
}

// enqueue counts fn as in flight and queues it on worker w.
// It runs fn on the caller when the pool is closing.
func (p *WorkerPool) enqueue(w int, fn func(), after func()) {
	p.mu.Lock()
	p.inflight++
	p.mu.Unlock()

	job := func() {
		defer p.finish()
		if after != nil {
			defer after()
		}
		fn()
	}
	select {
	case <-p.done:
		job()
		return
	default:
	}
	select {
	case p.queues[w] <- job:
	case <-p.done:
		job()
	}
}

func (p *WorkerPool) finish() {
	p.mu.Lock()
	p.inflight--
	if p.inflight == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}

// ExecuteAll runs every function and returns when all have finished.
// On a closed pool the functions run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		p.enqueue(i%p.workers, fn, wg.Done)
	}
	wg.Wait()
}

// Submit queues fn without waiting for it. Jobs are spread round-robin.
// Submit is a no-op on a closed pool.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}
	w := int(p.next.Add(1)-1) % p.workers
	p.enqueue(w, fn, nil)
}

// Wait blocks until every job submitted so far has finished.
func (p *WorkerPool) Wait() {
	p.mu.Lock()
	for p.inflight > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Close finishes queued work and stops the workers. It is idempotent.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork approximates the number of queued, not yet started jobs.
func (p *WorkerPool) QueuedWork() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}
