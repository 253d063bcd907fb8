package http

import "sync"

// uploadGuard allows one in-flight upload per session.
type uploadGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newUploadGuard() *uploadGuard {
	return &uploadGuard{active: make(map[string]struct{})}
}

func (g *uploadGuard) acquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[sessionID]; busy {
		return false
	}
	g.active[sessionID] = struct{}{}
	return true
}

func (g *uploadGuard) release(sessionID string) {
	g.mu.Lock()
	delete(g.active, sessionID)
	g.mu.Unlock()
}
