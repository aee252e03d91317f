package bind

import (
	"log/slog"
	"sync"

	"github.com/reflow-dev/reflow/pkg/dom"
	"github.com/reflow-dev/reflow/pkg/state"
	"github.com/reflow-dev/reflow/pkg/validate"
)

// scopes tracks the bindings attached under each bound root.
var (
	scopesMu sync.Mutex
	scopes   = make(map[*dom.Node]*scope)
)

// scope owns everything Bind wired under one root: the processed-set that
// keeps rebinding idempotent, the teardown list, and the reconcilers.
type scope struct {
	root  *dom.Node
	store *state.Store

	mu          sync.Mutex
	processed   map[*dom.Node]bool
	cleanups    []func()
	reconcilers []*reconciler
}

func (sc *scope) logger() *slog.Logger { return sc.store.Logger() }

func (sc *scope) addCleanup(fn func()) {
	sc.mu.Lock()
	sc.cleanups = append(sc.cleanups, fn)
	sc.mu.Unlock()
}

func (sc *scope) markProcessed(n *dom.Node) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.processed[n] {
		return false
	}
	sc.processed[n] = true
	return true
}

func (sc *scope) unmarkProcessed(n *dom.Node) {
	sc.mu.Lock()
	delete(sc.processed, n)
	sc.mu.Unlock()
}

// Bind scans the subtree rooted at root for declarative path markers and
// wires bindings against store. Binding is idempotent: nodes already
// processed under this root are skipped, so repeated binding of overlapping
// subtrees never double-attaches listeners.
//
// The markup expander, if any, must have run to completion over the subtree
// before Bind is invoked; that ordering is the caller's responsibility.
func Bind(root *dom.Node, store *state.Store) {
	if root == nil || store == nil {
		slog.Default().Warn("bind: nil root or store")
		return
	}

	scopesMu.Lock()
	sc, ok := scopes[root]
	if !ok {
		sc = &scope{root: root, store: store, processed: make(map[*dom.Node]bool)}
		scopes[root] = sc
	}
	scopesMu.Unlock()

	sc.scan(root)
}

// Unbind reverses every listener attachment and subscription registered
// under root, including those owned by nested reconcilers.
func Unbind(root *dom.Node) {
	scopesMu.Lock()
	sc, ok := scopes[root]
	delete(scopes, root)
	scopesMu.Unlock()
	if !ok {
		return
	}

	sc.mu.Lock()
	cleanups := sc.cleanups
	sc.cleanups = nil
	recs := sc.reconcilers
	sc.reconcilers = nil
	sc.processed = make(map[*dom.Node]bool)
	sc.mu.Unlock()

	// Teardown runs in reverse registration order.
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	for _, r := range recs {
		r.destroy()
	}
}

// scan wires the subtree under n. Collection markers bind before scalar
// markers; scalar markers inside a not-yet-materialized collection template
// are left for the reconciler to handle when it instantiates each item.
func (sc *scope) scan(n *dom.Node) {
	// Collection pass. Record data-for nodes without descending into them:
	// their subtrees are templates, not live bindings.
	var loops []*dom.Node
	n.Walk(func(cur *dom.Node) bool {
		if _, ok := cur.Attr(AttrFor); ok {
			loops = append(loops, cur)
			return false
		}
		return true
	})
	for _, loop := range loops {
		if sc.markProcessed(loop) {
			sc.buildLoop(loop, nil)
		}
	}

	// Scalar pass over the mutated tree; templates are detached by now.
	n.Walk(func(cur *dom.Node) bool {
		if _, ok := cur.Attr(AttrFor); ok {
			return false
		}
		path, ok := cur.Attr(AttrBind)
		if !ok {
			return true
		}
		sc.setupScalar(cur, path)
		return true
	})
}

// buildLoop replaces a collection marker node with an anchor and builds its
// reconciler. vars carries the loop variables of enclosing items for nested
// collections; nil at the top level. Returns nil when the binding is
// skipped for a malformed marker. Callers handle processed-set bookkeeping.
func (sc *scope) buildLoop(node *dom.Node, vars map[string]any) *reconciler {
	expr, _ := node.Attr(AttrFor)
	parsed, err := parseLoop(expr)
	if err != nil {
		sc.logger().Warn("bind: skipping collection binding",
			slog.String("expr", expr), slog.Any("error", err))
		return nil
	}

	keySel, _ := node.Attr(AttrKey)

	// The marker node becomes the per-item template; an anchor keeps its
	// position in the live tree.
	template := node.Clone()
	template.DelAttr(AttrFor)
	template.DelAttr(AttrKey)

	anchor := dom.NewAnchor("for: " + expr)
	parent := node.Parent()
	if parent == nil {
		sc.logger().Warn("bind: collection marker has no parent",
			slog.String("expr", expr))
		return nil
	}
	parent.InsertAfter(anchor, node)
	node.Detach()
	sc.markProcessed(anchor)

	r := newReconciler(sc, template, anchor, parsed, keySel, vars)

	sc.mu.Lock()
	sc.reconcilers = append(sc.reconcilers, r)
	sc.mu.Unlock()

	r.render()

	// Relative sources re-render through their parent item; absolute
	// sources subscribe to the store directly.
	if !r.relative() {
		unsub := sc.store.Subscribe(parsed.Source, func(any) { r.render() })
		r.unsub = unsub
		sc.addCleanup(unsub)
	}
	return r
}

// setupScalar wires one scalar marker: two-way for interactive controls,
// one-way for everything else.
func (sc *scope) setupScalar(n *dom.Node, path string) {
	if !sc.markProcessed(n) {
		return
	}

	if !state.ValidPath(path) {
		sc.logger().Warn("bind: skipping scalar binding, malformed path",
			slog.String("path", path))
		return
	}

	if n.IsControl() {
		sc.setupTwoWay(n, path)
		return
	}
	sc.setupOneWay(n, path)
}

// setupOneWay initializes the node's text from the current path value and
// re-renders it verbatim on every change.
func (sc *scope) setupOneWay(n *dom.Node, path string) {
	n.SetText(display(sc.store.Lookup(path)))
	unsub := sc.store.Subscribe(path, func(v any) {
		n.SetText(display(v))
	})
	sc.addCleanup(unsub)
}

// setupTwoWay wires state↔control synchronization, including the optional
// validation pipeline whose result mirrors the path under the errors root.
func (sc *scope) setupTwoWay(n *dom.Node, path string) {
	var rules []validate.Rule
	if spec, ok := n.Attr(AttrValidate); ok {
		parsed, err := validate.Parse(spec)
		if err != nil {
			sc.logger().Warn("bind: skipping control binding, bad validation rules",
				slog.String("path", path), slog.Any("error", err))
			return
		}
		rules = parsed
	}

	writeControl(n, sc.store.Lookup(path))

	// handling suppresses the subscription's write-back while the control's
	// own input handler is running.
	handling := false

	off := n.On(controlEvent(n), func(dom.Event) {
		handling = true
		defer func() { handling = false }()

		v := readControl(n)
		sc.store.Set(path, v)
		if rules != nil {
			sc.store.Set(joinPath(errorsRoot, path), validate.Evaluate(rules, v))
		}
	})
	sc.addCleanup(off)

	unsub := sc.store.Subscribe(path, func(v any) {
		if handling {
			return
		}
		if controlDiffers(n, v) {
			writeControl(n, v)
		}
	})
	sc.addCleanup(unsub)
}

// joinPath mirrors the state package's path joining for the errors root.
func joinPath(prefix, path string) string {
	return prefix + "." + path
}
