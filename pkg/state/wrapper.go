package state

import (
	"reflect"
	"sort"
)

// mapID returns the identity of a raw object node. Wrappers are cached by
// this identity, not by content.
func mapID(m map[string]any) uintptr {
	return reflect.ValueOf(m).Pointer()
}

// listID identifies a raw sequence by its owning object and key. Go slice
// headers are values, so the owning slot is the stable identity a sequence
// keeps across in-place mutation.
type listID struct {
	owner uintptr
	key   string
}

// Object is the observable wrapper over one raw record in the data graph.
// It exposes the record's properties through Get and Set, intercepting
// writes so they are compared and reported to the scheduler.
//
// For a live raw node there is at most one Object; repeated reads of the
// same nested record return the same instance.
type Object struct {
	store *Store
	raw   map[string]any
	path  string

	// seq is non-empty when this object lives inside a sequence. Writes
	// through such a wrapper coalesce onto the sequence's own path, matching
	// the coarse-grained notification sequences use everywhere else.
	seq string
}

// Path returns the dotted path of this object from the root. The root
// object's path is the empty string.
func (o *Object) Path() string { return o.path }

// Raw returns the underlying record. The container never copies it.
func (o *Object) Raw() map[string]any { return o.raw }

// Get reads a property. Nested records and sequences are wrapped lazily on
// first read and cached by identity; when wrapping re-enters a node already
// on the current path (a cycle), the raw node is returned instead and a
// single warning is logged for that path. The cyclic edge loses reactivity;
// the rest of the graph is unaffected.
func (o *Object) Get(key string) any {
	s := o.store
	s.mu.Lock()
	v := o.raw[key]
	childPath := joinPath(o.path, key)

	switch cv := v.(type) {
	case map[string]any:
		w := s.wrapObjectLocked(cv, childPath, o.seq)
		s.mu.Unlock()
		if w == nil {
			return cv
		}
		return w
	case []any:
		l := s.listForLocked(o, key, childPath)
		s.mu.Unlock()
		return l
	default:
		s.mu.Unlock()
		return v
	}
}

// Set assigns a property. Same-reference writes are no-ops; anything else
// is applied to the raw record immediately and queued for the next flush.
func (o *Object) Set(key string, value any) {
	s := o.store
	s.mu.Lock()
	old := o.raw[key]
	if sameValue(old, value) {
		s.mu.Unlock()
		return
	}
	o.raw[key] = value
	s.mu.Unlock()

	s.stats.Writes.Add(1)
	if o.seq != "" {
		s.sched.queue(o.seq, recompute)
		return
	}
	s.sched.queue(joinPath(o.path, key), value)
}

// Object reads a property expected to be a nested record. Returns nil when
// the property is absent or not a record.
func (o *Object) Object(key string) *Object {
	child, _ := o.Get(key).(*Object)
	return child
}

// List reads a property expected to be a sequence. Returns nil when the
// property is absent or not a sequence.
func (o *Object) List(key string) *List {
	child, _ := o.Get(key).(*List)
	return child
}

// List is the observable wrapper over one raw sequence. Mutation methods
// apply the native operation to the raw slice first, then report a single
// coarse-grained change on the sequence's own path, not per index. The
// trade-off is simplicity over fine-grained diffing: large sequences pay
// for a full downstream reconciliation on every mutation.
type List struct {
	store *Store
	owner *Object
	key   string
	path  string
}

// Path returns the dotted path of this sequence from the root.
func (l *List) Path() string { return l.path }

// rawLocked reads the current slice out of the owning slot. Callers hold
// the store mutex.
func (l *List) rawLocked() []any {
	s, _ := l.owner.raw[l.key].([]any)
	return s
}

// Raw returns the underlying slice as it currently stands.
func (l *List) Raw() []any {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.rawLocked()
}

// Len returns the current number of items.
func (l *List) Len() int {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return len(l.rawLocked())
}

// Item reads the item at index i, wrapping records the same way Object.Get
// does. Out-of-range reads return nil.
func (l *List) Item(i int) any {
	s := l.store
	s.mu.Lock()
	raw := l.rawLocked()
	if i < 0 || i >= len(raw) {
		s.mu.Unlock()
		return nil
	}
	v := raw[i]
	if cv, ok := v.(map[string]any); ok {
		w := s.wrapObjectLocked(cv, l.path, l.path)
		s.mu.Unlock()
		if w == nil {
			return cv
		}
		return w
	}
	s.mu.Unlock()
	return v
}

// commit writes the mutated slice back to the owning slot and reports one
// coarse change on the sequence path.
func (l *List) commit(next []any) {
	l.store.mu.Lock()
	l.owner.raw[l.key] = next
	l.store.mu.Unlock()

	l.store.stats.Writes.Add(1)
	l.store.sched.queue(l.path, next)
}

// Append adds items at the end of the sequence.
func (l *List) Append(items ...any) {
	l.store.mu.Lock()
	next := append(l.rawLocked(), items...)
	l.store.mu.Unlock()
	l.commit(next)
}

// Prepend adds items at the start of the sequence.
func (l *List) Prepend(items ...any) {
	l.store.mu.Lock()
	next := append(append([]any{}, items...), l.rawLocked()...)
	l.store.mu.Unlock()
	l.commit(next)
}

// RemoveFirst removes the first item. No-op on an empty sequence.
func (l *List) RemoveFirst() {
	l.store.mu.Lock()
	raw := l.rawLocked()
	if len(raw) == 0 {
		l.store.mu.Unlock()
		return
	}
	next := raw[1:]
	l.store.mu.Unlock()
	l.commit(next)
}

// RemoveLast removes the last item. No-op on an empty sequence.
func (l *List) RemoveLast() {
	l.store.mu.Lock()
	raw := l.rawLocked()
	if len(raw) == 0 {
		l.store.mu.Unlock()
		return
	}
	next := raw[:len(raw)-1]
	l.store.mu.Unlock()
	l.commit(next)
}

// InsertAt inserts an item at index i, clamped to the sequence bounds.
func (l *List) InsertAt(i int, item any) {
	l.store.mu.Lock()
	raw := l.rawLocked()
	if i < 0 {
		i = 0
	}
	if i > len(raw) {
		i = len(raw)
	}
	next := make([]any, 0, len(raw)+1)
	next = append(next, raw[:i]...)
	next = append(next, item)
	next = append(next, raw[i:]...)
	l.store.mu.Unlock()
	l.commit(next)
}

// Splice removes deleteCount items starting at start, inserts items in
// their place, and returns the removed items. Bounds are clamped.
func (l *List) Splice(start, deleteCount int, items ...any) []any {
	l.store.mu.Lock()
	raw := l.rawLocked()
	if start < 0 {
		start = 0
	}
	if start > len(raw) {
		start = len(raw)
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > len(raw) {
		deleteCount = len(raw) - start
	}

	removed := make([]any, deleteCount)
	copy(removed, raw[start:start+deleteCount])

	next := make([]any, 0, len(raw)-deleteCount+len(items))
	next = append(next, raw[:start]...)
	next = append(next, items...)
	next = append(next, raw[start+deleteCount:]...)
	l.store.mu.Unlock()

	l.commit(next)
	return removed
}

// Sort orders the sequence in place using less and reports one change.
func (l *List) Sort(less func(a, b any) bool) {
	l.store.mu.Lock()
	raw := l.rawLocked()
	next := make([]any, len(raw))
	copy(next, raw)
	sort.SliceStable(next, func(i, j int) bool { return less(next[i], next[j]) })
	l.store.mu.Unlock()
	l.commit(next)
}

// Reverse reverses the sequence in place and reports one change.
func (l *List) Reverse() {
	l.store.mu.Lock()
	raw := l.rawLocked()
	next := make([]any, len(raw))
	for i, v := range raw {
		next[len(raw)-1-i] = v
	}
	l.store.mu.Unlock()
	l.commit(next)
}
