// Package shutdown coordinates graceful teardown: components register hooks
// and a single Shutdown call runs them concurrently under one deadline.
package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/polyclob/pkg/logger"
)

// Hook is one teardown step. It must return when ctx ends.
type Hook func(ctx context.Context)

// Manager collects hooks and runs them on shutdown.
type Manager struct {
	hooks []Hook
	mu    sync.Mutex
}

func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers a hook. Safe to call from multiple goroutines.
func (m *Manager) OnShutdown(hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Shutdown runs every registered hook concurrently and blocks until all
// finish or ctx expires. Pass a context with a deadline; a hook that hangs
// otherwise blocks forever.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	hooks := m.hooks
	m.mu.Unlock()

	if len(hooks) == 0 {
		return
	}
	logger.Infof("shutting down, %d hooks", len(hooks))

	var wg sync.WaitGroup
	wg.Add(len(hooks))
	for _, hook := range hooks {
		go func(h Hook) {
			defer wg.Done()
			h(ctx)
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-ctx.Done():
		logger.Warnf("shutdown timed out: %v", ctx.Err())
	}
}
