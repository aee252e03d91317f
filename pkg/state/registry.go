package state

import "sync"

// Callback receives the resolved value for a path when a flush delivers a
// batched change.
type Callback func(value any)

// Unsubscribe removes the subscription it was returned for. Calling it more
// than once is harmless. Unsubscribing before a flush guarantees the
// callback is not invoked: the registry is consulted at flush time, not at
// write time.
type Unsubscribe func()

// subscription is one (path, callback) pair.
type subscription struct {
	id   uint64
	path string
	fn   Callback
}

// registry maps paths to their subscribers. Insertion order is preserved so
// delivery within one path is deterministic.
type registry struct {
	mu     sync.Mutex
	subs   map[string][]*subscription
	nextID uint64
	count  int
}

func newRegistry() *registry {
	return &registry{subs: make(map[string][]*subscription)}
}

func (r *registry) add(path string, fn Callback) *subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &subscription{id: r.nextID, path: path, fn: fn}
	r.subs[path] = append(r.subs[path], sub)
	r.count++
	return sub
}

func (r *registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.subs[sub.path]
	for i, s := range list {
		if s.id == sub.id {
			r.subs[sub.path] = append(list[:i:i], list[i+1:]...)
			r.count--
			break
		}
	}
	if len(r.subs[sub.path]) == 0 {
		delete(r.subs, sub.path)
	}
}

// forPath returns a snapshot of the subscribers registered for exactly path.
// Copy-before-notify: the caller iterates without holding the lock, so a
// callback may subscribe or unsubscribe freely.
func (r *registry) forPath(path string) []*subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.subs[path]
	if len(list) == 0 {
		return nil
	}
	out := make([]*subscription, len(list))
	copy(out, list)
	return out
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string][]*subscription)
	r.count = 0
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
