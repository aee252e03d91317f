package state

import (
	"log/slog"
	"sync"
)

// sentinel marks a pending entry whose value must be recomputed from the
// live graph at flush time. Ancestor paths are queued with it because their
// net effect is not known at write time.
type sentinel struct{}

var recompute = sentinel{}

// Deferrer schedules the deferred flush. The default runs the flush on a
// fresh goroutine; delivery is still serialized by the scheduler, so
// callbacks never run concurrently. Hosts with their own loop can supply a
// deferrer that enqueues into it, and tests can capture flushes for manual
// draining.
type Deferrer func(flush func())

func goDeferrer(flush func()) { go flush() }

// scheduler coalesces writes occurring before the deferred flush point into
// one notification per affected path, then dispatches to the registry.
type scheduler struct {
	store *Store

	mu        sync.Mutex
	pending   map[string]any
	order     []string
	scheduled bool
	deferrer  Deferrer

	// deliverMu serializes flush delivery. A write performed inside a
	// subscriber callback lands in a fresh pending batch whose flush blocks
	// here until the current delivery completes, bounding recursion depth.
	deliverMu sync.Mutex
}

func newScheduler(store *Store, d Deferrer) *scheduler {
	if d == nil {
		d = goDeferrer
	}
	return &scheduler{
		store:    store,
		pending:  make(map[string]any),
		deferrer: d,
	}
}

// queue stores or overwrites the pending entry for path and marks every
// strict ancestor as needing recompute. Exactly one deferred flush is
// scheduled per tick; repeated calls within the tick only update the map.
func (s *scheduler) queue(path string, value any) {
	s.mu.Lock()
	if _, ok := s.pending[path]; !ok {
		s.order = append(s.order, path)
	}
	s.pending[path] = value

	for _, anc := range ancestors(path) {
		// Never overwrite an already-queued entry: an ordinary value queued
		// for the ancestor stays, and an existing sentinel is enough.
		if _, ok := s.pending[anc]; !ok {
			s.pending[anc] = recompute
			s.order = append(s.order, anc)
		}
	}

	schedule := !s.scheduled
	if schedule {
		s.scheduled = true
	}
	d := s.deferrer
	s.mu.Unlock()

	if schedule {
		d(s.flush)
	}
}

// flush atomically swaps out the pending batch, clears the scheduling guard,
// resolves sentinels against the live graph, and notifies the subscribers
// registered for each exact path. Each path is notified at most once per
// flush, with its final value as of flush time.
func (s *scheduler) flush() {
	s.mu.Lock()
	pending := s.pending
	order := s.order
	s.pending = make(map[string]any)
	s.order = nil
	s.scheduled = false
	s.mu.Unlock()

	if len(order) == 0 {
		return
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.store.stats.Flushes.Add(1)

	for _, path := range order {
		value := pending[path]
		if _, needs := value.(sentinel); needs {
			value = s.store.lookup(path)
		}
		for _, sub := range s.store.reg.forPath(path) {
			s.invoke(path, sub, value)
		}
	}
}

// invoke runs one subscriber, recovering a panic so the remaining
// subscribers in the same flush still run.
func (s *scheduler) invoke(path string, sub *subscription, value any) {
	defer func() {
		if r := recover(); r != nil {
			s.store.stats.SubscriberFaults.Add(1)
			s.store.logger.Warn("state: subscriber panicked",
				slog.String("path", path),
				slog.Any("panic", r))
		}
	}()

	sub.fn(value)
	s.store.stats.Notifications.Add(1)
}

// flushSync executes a scheduled flush immediately instead of waiting for
// the deferred point. Safe to call with nothing pending.
func (s *scheduler) flushSync() {
	s.mu.Lock()
	empty := len(s.order) == 0
	s.mu.Unlock()
	if empty {
		return
	}
	s.flush()
}

// nextTick runs fn on a later scheduling tick via the deferrer, after any
// delivery currently in progress has completed.
func (s *scheduler) nextTick(fn func()) {
	s.mu.Lock()
	d := s.deferrer
	s.mu.Unlock()

	d(func() {
		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		fn()
	})
}

// reset discards all pending work. Used by Destroy.
func (s *scheduler) reset() {
	s.mu.Lock()
	s.pending = make(map[string]any)
	s.order = nil
	s.scheduled = false
	s.mu.Unlock()
}
