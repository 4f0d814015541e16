package pptgen

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one assembly can run.
	MinWorkers = 1

	// MaxWorkers caps concurrent assemblies; each holds a full deck in memory.
	MaxWorkers = 16
)

// WorkerPool bounds how many assemblies run at once.
type WorkerPool struct {
	sem   *semaphore.Weighted
	size  int
	inUse atomic.Int64
}

// NewWorkerPool creates a pool admitting n concurrent assemblies.
func NewWorkerPool(n int) *WorkerPool {
	if n < MinWorkers {
		n = MinWorkers
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(n)), size: n}
}

// Acquire waits for a free slot. It returns ctx.Err() if ctx ends first,
// even when a slot is free.
func (p *WorkerPool) Acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.inUse.Add(1)
	return nil
}

// Release frees a slot taken by Acquire. Releasing more than was acquired
// panics.
func (p *WorkerPool) Release() {
	p.inUse.Add(-1)
	p.sem.Release(1)
}

// Size returns the pool capacity.
func (p *WorkerPool) Size() int {
	return p.size
}

// InUse returns the number of slots currently held.
func (p *WorkerPool) InUse() int {
	return int(p.inUse.Load())
}

// ResolveWorkers determines the pool size.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs for containers).
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxWorkers)
}
