package state

import (
	"sync/atomic"
	"time"
)

// storeStats holds the store's internal counters. Updated atomically on the
// hot paths, snapshotted on demand.
type storeStats struct {
	Writes           atomic.Int64
	Flushes          atomic.Int64
	Notifications    atomic.Int64
	SubscriberFaults atomic.Int64
}

// Stats is a point-in-time snapshot of store activity.
type Stats struct {
	// Writes is the number of changed-value writes reported to the scheduler.
	Writes int64

	// Flushes is the number of delivered batches.
	Flushes int64

	// Notifications is the number of subscriber callbacks invoked.
	Notifications int64

	// SubscriberFaults is the number of callbacks that panicked.
	SubscriberFaults int64

	// ActiveSubscriptions is the current size of the registry.
	ActiveSubscriptions int64

	// CollectedAt is when the snapshot was taken.
	CollectedAt time.Time
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	return Stats{
		Writes:              s.stats.Writes.Load(),
		Flushes:             s.stats.Flushes.Load(),
		Notifications:       s.stats.Notifications.Load(),
		SubscriberFaults:    s.stats.SubscriberFaults.Load(),
		ActiveSubscriptions: int64(s.reg.size()),
		CollectedAt:         time.Now(),
	}
}
