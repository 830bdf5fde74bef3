// Package syncgroup wraps sync.WaitGroup for the common launch-then-wait
// pattern: queue functions, start them all, wait for them all.
package syncgroup

import "sync"

// Group runs a batch of functions as goroutines. Add before Go; Wait blocks
// until every started function returns. The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	queued  []func()
	started bool
}

func New() *Group {
	return &Group{}
}

// Add queues a function. Calls after Go are ignored.
func (g *Group) Add(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return
	}
	g.queued = append(g.queued, fn)
}

// Go starts every queued function in its own goroutine.
func (g *Group) Go() {
	g.mu.Lock()
	fns := g.queued
	g.queued = nil
	g.started = true
	g.mu.Unlock()

	for _, fn := range fns {
		g.wg.Add(1)
		go func(run func()) {
			defer g.wg.Done()
			run()
		}(fn)
	}
}

// Wait blocks until all started functions have returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
