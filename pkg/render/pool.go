package render

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// chunksPerWorker splits loops finer than the worker count so uneven
// iterations (large triangles next to tiny ones) still balance.
const chunksPerWorker = 4

// Pool runs fork-join parallel loops on a fixed number of workers.
// The goroutine calling For is one of them; the other workers-1 are
// helper slots shared by every loop of the pool, nested ones included.
type Pool struct {
	workers int
	helpers chan struct{}
}

// NewPool creates a pool. workers <= 0 uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: workers,
		helpers: make(chan struct{}, workers-1),
	}
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// For calls body(i) for every i in [0, n) and returns once all calls have
// finished. Iterations run concurrently and must not depend on each other.
//
// The caller always works through the loop itself and only recruits helpers
// whose slots are free, so a nested For never waits on a slot. With one
// outside caller at most Workers bodies run at once.
func (p *Pool) For(n int, body func(i int)) {
	if n <= 0 {
		return
	}
	if p.workers <= 1 || n == 1 {
		for i := range n {
			body(i)
		}
		return
	}

	chunks := min(n, p.workers*chunksPerWorker)
	size := (n + chunks - 1) / chunks
	var next atomic.Int64
	work := func() {
		for {
			lo := int(next.Add(1)-1) * size
			if lo >= n {
				return
			}
			for i := lo; i < min(lo+size, n); i++ {
				body(i)
			}
		}
	}

	var g errgroup.Group
recruit:
	for range min(chunks, p.workers) - 1 {
		select {
		case p.helpers <- struct{}{}:
			g.Go(func() error {
				defer func() { <-p.helpers }()
				work()
				return nil
			})
		default:
			break recruit
		}
	}
	work()
	_ = g.Wait()
}
