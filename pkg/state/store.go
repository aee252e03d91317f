package state

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Store is the observable state container. It wraps a plain data graph so
// that reads lazily produce cached wrappers over nested records and writes
// are intercepted, compared, and batched for deferred delivery.
//
// A Store is created once per application or session and torn down with
// Destroy. Execution is cooperative: all reads and writes are synchronous
// and immediately consistent from the caller's perspective, while
// notification delivery happens at the next tick boundary.
type Store struct {
	mu       sync.Mutex
	root     map[string]any
	rootObj  *Object
	cache    map[uintptr]*Object
	lists    map[listID]*List
	wrapping map[uintptr]bool
	warned   map[string]bool

	sched  *scheduler
	reg    *registry
	logger *slog.Logger
	stats  storeStats

	destroyed atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDeferrer sets the deferred-flush primitive. The default runs the
// flush on a fresh goroutine; hosts that drive their own loop can enqueue
// into it instead.
func WithDeferrer(d Deferrer) Option {
	return func(s *Store) {
		if d != nil {
			s.sched.deferrer = d
		}
	}
}

// New creates a Store over the given raw graph. The graph is never copied;
// the store only wraps it. Returns ErrInvalidGraph when graph is not an
// object-like value.
func New(graph any, opts ...Option) (*Store, error) {
	root, ok := graph.(map[string]any)
	if !ok || root == nil {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidGraph, graph)
	}

	s := &Store{
		root:     root,
		cache:    make(map[uintptr]*Object),
		lists:    make(map[listID]*List),
		wrapping: make(map[uintptr]bool),
		warned:   make(map[string]bool),
		reg:      newRegistry(),
		logger:   slog.Default(),
	}
	s.sched = newScheduler(s, nil)
	for _, opt := range opts {
		opt(s)
	}

	s.rootObj = &Object{store: s, raw: root}
	s.cache[mapID(root)] = s.rootObj
	return s, nil
}

// Root returns the wrapper over the root of the graph.
func (s *Store) Root() *Object {
	return s.rootObj
}

// wrapObjectLocked returns the cached wrapper for raw, creating one when
// seen for the first time. A nil return means the edge is cyclic: the node
// is already wrapped at an ancestor of path (or wrapping is re-entered for
// the same identity) and the caller should hand out the raw node instead.
func (s *Store) wrapObjectLocked(raw map[string]any, path, seq string) *Object {
	id := mapID(raw)
	if w, ok := s.cache[id]; ok {
		if isAncestor(w.path, path) {
			s.warnCycleLocked(path)
			return nil
		}
		return w
	}
	if s.wrapping[id] {
		s.warnCycleLocked(path)
		return nil
	}

	s.wrapping[id] = true
	w := &Object{store: s, raw: raw, path: path, seq: seq}
	s.cache[id] = w
	delete(s.wrapping, id)
	return w
}

// listForLocked returns the cached wrapper for the sequence stored at
// owner[key], creating one on first read.
func (s *Store) listForLocked(owner *Object, key, path string) *List {
	id := listID{owner: mapID(owner.raw), key: key}
	if l, ok := s.lists[id]; ok {
		return l
	}
	l := &List{store: s, owner: owner, key: key, path: path}
	s.lists[id] = l
	return l
}

// isAncestor reports whether anc is the root path or a strict ancestor of p.
func isAncestor(anc, p string) bool {
	return anc == "" || strings.HasPrefix(p, anc+".")
}

// warnCycleLocked logs the graph-integrity warning once per path.
func (s *Store) warnCycleLocked(path string) {
	if s.warned[path] {
		return
	}
	s.warned[path] = true
	s.logger.Warn("state: cycle detected in data graph, edge is not reactive",
		slog.String("path", path))
}

// Get resolves a dotted path against the graph, wrapping the result the way
// Object.Get does. Invalid paths and paths crossing a non-record value
// resolve to nil.
func (s *Store) Get(path string) any {
	if !ValidPath(path) {
		s.logger.Warn("state: invalid path", slog.String("path", path))
		return nil
	}

	var cur any = s.rootObj
	for _, seg := range splitPath(path) {
		obj, ok := cur.(*Object)
		if !ok {
			return nil
		}
		cur = obj.Get(seg)
	}
	return cur
}

// Set assigns value at a dotted path, creating missing intermediate records
// along the way. The write is immediately visible in the graph; subscribers
// hear about it at the next flush.
func (s *Store) Set(path string, value any) {
	if !ValidPath(path) {
		s.logger.Warn("state: invalid path", slog.String("path", path))
		return
	}

	segs := splitPath(path)
	obj := s.rootObj
	for _, seg := range segs[:len(segs)-1] {
		child := obj.Get(seg)
		switch c := child.(type) {
		case *Object:
			obj = c
		case nil:
			obj.Set(seg, map[string]any{})
			next, ok := obj.Get(seg).(*Object)
			if !ok {
				return
			}
			obj = next
		default:
			s.logger.Warn("state: cannot assign through non-record value",
				slog.String("path", path), slog.String("segment", seg))
			return
		}
	}
	obj.Set(segs[len(segs)-1], value)
}

// Lookup resolves a path against the raw graph without wrapping: the same
// representation subscriber callbacks receive. Invalid paths resolve to nil.
func (s *Store) Lookup(path string) any {
	if !ValidPath(path) {
		return nil
	}
	return s.lookup(path)
}

// lookup resolves a path against the raw graph without wrapping. Used at
// flush time to recompute sentinel entries, so an ancestor's notified value
// reflects the state as of the flush, not of any individual write.
func (s *Store) lookup(path string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur any = s.root
	for _, seg := range splitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

// Subscribe registers cb for changes at exactly path and returns the
// function that removes the subscription. Invalid arguments degrade to a
// logged warning and a no-op unsubscribe rather than an error.
func (s *Store) Subscribe(path string, cb Callback) Unsubscribe {
	if !ValidPath(path) || cb == nil {
		s.logger.Warn("state: invalid subscribe arguments",
			slog.String("path", path), slog.Bool("callback", cb != nil))
		return func() {}
	}

	sub := s.reg.add(path, cb)
	var once sync.Once
	return func() {
		once.Do(func() { s.reg.remove(sub) })
	}
}

// FlushSync executes a pending flush immediately instead of waiting for the
// deferred point. Safe to call with nothing pending.
func (s *Store) FlushSync() {
	s.sched.flushSync()
}

// NextTick runs fn on a later scheduling tick, after any notification
// delivery currently in progress has completed.
func (s *Store) NextTick(fn func()) {
	if fn == nil {
		return
	}
	s.sched.nextTick(fn)
}

// UnsubscribeAll removes every subscription.
func (s *Store) UnsubscribeAll() {
	s.reg.clear()
}

// Destroy tears the container down: clears the wrapper arena, the
// subscription registry, and any pending changes. The raw graph itself is
// owned by the application and left untouched.
func (s *Store) Destroy() {
	if !s.destroyed.CompareAndSwap(false, true) {
		return
	}
	s.reg.clear()
	s.sched.reset()

	s.mu.Lock()
	s.cache = make(map[uintptr]*Object)
	s.lists = make(map[listID]*List)
	s.wrapping = make(map[uintptr]bool)
	s.warned = make(map[string]bool)
	s.mu.Unlock()
}

// Destroyed reports whether Destroy has been called.
func (s *Store) Destroyed() bool {
	return s.destroyed.Load()
}

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}
