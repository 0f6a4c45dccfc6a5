package memory

import (
	"context"
	"sync"
	"time"
)

// CourtesyGateImpl implements repository.CourtesyGate for a single process.
// It is used when no Redis address is configured.
type CourtesyGateImpl struct {
	mu        sync.Mutex
	releaseAt map[string]time.Time
	now       func() time.Time
}

// NewCourtesyGate creates an empty in-process gate.
func NewCourtesyGate() *CourtesyGateImpl {
	return &CourtesyGateImpl{
		releaseAt: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Hold blocks new scrapes of host for d. An existing longer hold is kept.
func (g *CourtesyGateImpl) Hold(_ context.Context, host string, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	until := g.now().Add(d)
	if cur, ok := g.releaseAt[host]; ok && cur.After(until) {
		return nil
	}
	g.releaseAt[host] = until
	return nil
}

// Wait returns once no hold is active for host, or when ctx is done.
func (g *CourtesyGateImpl) Wait(ctx context.Context, host string) error {
	for {
		remaining := g.remaining(host)
		if remaining <= 0 {
			return nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// remaining reports the time left on host's hold and forgets expired holds.
func (g *CourtesyGateImpl) remaining(host string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	until, ok := g.releaseAt[host]
	if !ok {
		return 0
	}
	left := until.Sub(g.now())
	if left <= 0 {
		delete(g.releaseAt, host)
	}
	return left
}
