package reservation

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is how often the reaper scans for lapsed holds.
// The lazy check inside Reserve is authoritative for correctness; the
// sweep is a consistency pass, so the interval only bounds how long
// stored seat status may lag logical state.
const DefaultSweepInterval = 30 * time.Second

// Reaper periodically reclaims seats from holds whose deadline has
// passed without an explicit release.
type Reaper struct {
	manager  *Manager
	interval time.Duration
}

// NewReaper wraps the manager's sweep in a ticker loop.  A non-positive
// interval falls back to DefaultSweepInterval.
func NewReaper(manager *Manager, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Reaper{manager: manager, interval: interval}
}

// Run sweeps on every tick until the context is cancelled.  Sweep
// failures are logged and retried on the next tick; a broken storage
// backend must not kill the server.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	log.Printf("reaper: sweeping every %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reaper: shutting down")
			return
		case <-ticker.C:
			n, err := r.manager.ReapExpired(ctx)
			if err != nil {
				log.Printf("reaper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("reaper: reclaimed %d expired reservation(s)", n)
			}
		}
	}
}
