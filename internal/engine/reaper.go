package engine

import (
	"context"
	"time"

	"github.com/example/saathigo/internal/models"
	"github.com/example/saathigo/internal/observability"
)

// RunReaper periodically evicts searching requests older than
// MaxRequestAge. This is distinct from the 10-minute matching window,
// which only filters candidates: without the reaper a rider who never
// disconnects and never matches would sit in the registry forever. A
// non-positive MaxRequestAge disables the sweep. Blocks until ctx is done.
func (e *Engine) RunReaper(ctx context.Context, interval time.Duration) {
	if e.MaxRequestAge <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.reapOnce()
		}
	}
}

func (e *Engine) reapOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-e.MaxRequestAge)
	var reaped int
	for _, req := range e.reg.Snapshot() {
		if req.Status != models.StatusSearching || req.CreatedAt.After(cutoff) {
			continue
		}
		e.reg.Remove(req.ID)
		e.mirrorRemove(req.ID)
		observability.ReapedRequests.Inc()
		e.log.Info("reaped stale ride request", "conn", req.ID, "age", e.now().Sub(req.CreatedAt))
		reaped++
	}
	if reaped > 0 {
		e.broadcastLocked()
	}
}
