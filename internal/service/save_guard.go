package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// saveGuard: one save per page at a time
// ─────────────────────────────────────────────────────────────

// saveGuard rejects a save for a page that is already being saved and lets
// shutdown wait for in-flight saves.
type saveGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// TryLock claims pageID. It returns false when a save of pageID is running.
func (g *saveGuard) TryLock(pageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]struct{})
	}
	if _, busy := g.inFlight[pageID]; busy {
		return false
	}
	g.inFlight[pageID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases a claim taken by a successful TryLock.
func (g *saveGuard) Unlock(pageID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[pageID]; !ok {
		return
	}
	delete(g.inFlight, pageID)
	g.wg.Done()
}

// Busy reports whether a save of pageID is running.
func (g *saveGuard) Busy(pageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[pageID]
	return ok
}

// WaitAll blocks until every running save finishes or ctx is done.
func (g *saveGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
