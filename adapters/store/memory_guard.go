package store

import (
	"context"
	"sync"
)

// maxTrackedChallenges bounds the memory guard. Past the limit the whole
// set is dropped rather than evicted piecewise; the unique constraint on
// users.challenge catches any replay that slips through the reset.
const maxTrackedChallenges = 1000

// MemoryGuard implements ports.ReplayGuard with an in-process set.
// Suitable for single-instance deployments and tests.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryGuard creates an empty in-memory replay guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		seen: make(map[string]struct{}),
	}
}

// TryConsume marks the challenge as spent. Exactly one of N concurrent
// callers with the same challenge gets true.
func (g *MemoryGuard) TryConsume(_ context.Context, challenge string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[challenge]; ok {
		return false, nil
	}
	if len(g.seen) >= maxTrackedChallenges {
		g.seen = make(map[string]struct{})
	}
	g.seen[challenge] = struct{}{}
	return true, nil
}
