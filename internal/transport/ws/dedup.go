package ws

import (
	"sync"
)

// Dedup tracks the highest event sequence seen per order. Push delivery is
// at-least-once and reconnect replay can redeliver, so consumers keep one
// of these and drop anything stale.
type Dedup struct {
	mu   sync.Mutex
	last map[int64]uint64
}

// NewDedup creates an empty tracker.
func NewDedup() *Dedup {
	return &Dedup{
		last: make(map[int64]uint64),
	}
}

// Observe records an event and reports whether it is fresh. Duplicates and
// out-of-order stragglers return false and must not change client-visible
// state.
func (d *Dedup) Observe(orderID int64, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq <= d.last[orderID] {
		return false
	}
	d.last[orderID] = seq

	return true
}
