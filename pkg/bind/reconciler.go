package bind

import (
	"log/slog"
	"strconv"

	"github.com/reflow-dev/reflow/pkg/dom"
)

// KeyFunc derives the stable identity for a collection item. The default
// uses the item's positional index.
type KeyFunc func(item any, index int) string

// entry is one rendered collection item: the mapping from its stable key to
// the live node, the source item, and its index.
type entry struct {
	key   string
	node  *dom.Node
	item  any
	index int

	// vars is the loop-variable context for this item; nested reconcilers
	// and bound sub-values resolve relative paths through it. Mutated in
	// place on repopulation so nested bindings see fresh values.
	vars map[string]any

	// children are reconcilers for nested collection markers inside this
	// item's subtree.
	children []*reconciler

	// marked are the descendant marker nodes registered in the scope's
	// processed-set for this entry, unregistered when the entry goes away.
	marked []*dom.Node
}

// reconciler keeps a one-to-one mapping between stable item keys and live
// rendered nodes for one collection binding, performing linear-time
// insert/move/remove operations: a single forward cursor walk with a
// key→entry map, trading move-optimality for linear simplicity.
type reconciler struct {
	sc       *scope
	template *dom.Node
	anchor   *dom.Node
	expr     loopExpr
	keyFn    KeyFunc
	parent   map[string]any // enclosing loop variables, nil at top level

	entries map[string]*entry
	order   []string

	unsub func()

	// node-operation counters, exercised by tests and surfaced as stats.
	created int
	moved   int
	removed int
}

func newReconciler(sc *scope, template, anchor *dom.Node, expr loopExpr, keySel string, vars map[string]any) *reconciler {
	r := &reconciler{
		sc:       sc,
		template: template,
		anchor:   anchor,
		expr:     expr,
		parent:   vars,
		entries:  make(map[string]*entry),
	}
	r.keyFn = keyFuncFor(expr.LoopVar, keySel)
	return r
}

// keyFuncFor builds the key-derivation function for a key selector: empty
// means positional index, the bare loop variable means the item value
// itself, anything else names a sub-property of the item.
func keyFuncFor(loopVar, keySel string) KeyFunc {
	switch keySel {
	case "":
		return func(_ any, index int) string { return strconv.Itoa(index) }
	case loopVar:
		return func(item any, _ int) string { return display(item) }
	default:
		return func(item any, index int) string {
			if m, ok := item.(map[string]any); ok {
				return display(m[keySel])
			}
			return strconv.Itoa(index)
		}
	}
}

// relative reports whether the source path resolves through an enclosing
// item's loop variables rather than the root graph.
func (r *reconciler) relative() bool {
	if r.parent == nil {
		return false
	}
	seg, _, _ := cutPath(r.expr.Source)
	_, ok := r.parent[seg]
	return ok
}

// resolveSource resolves the source sequence for the current render pass:
// relative to the enclosing item's data first, falling back to the root
// graph when the path is not relative.
func (r *reconciler) resolveSource() any {
	seg, rest, hasRest := cutPath(r.expr.Source)
	if r.parent != nil {
		if v, ok := r.parent[seg]; ok {
			if !hasRest {
				return v
			}
			return walkRaw(v, rest)
		}
	}
	return r.sc.store.Lookup(r.expr.Source)
}

// render performs one full reconciliation pass: removal of dead keys, then
// a forward cursor walk over the new key order relocating or instantiating
// nodes so the rendered order matches the source order.
func (r *reconciler) render() {
	parent := r.anchor.Parent()
	if parent == nil {
		// Anchor detached; nothing to reconcile against.
		return
	}

	src := r.resolveSource()
	items, ok := src.([]any)
	if !ok {
		r.sc.logger().Warn("bind: collection source is not a sequence",
			slog.String("path", r.expr.Source))
		r.clear()
		return
	}

	// New key order. Duplicate keys get a positional suffix so the
	// key→entry mapping stays one-to-one.
	keys := make([]string, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		k := r.keyFn(item, i)
		if n := seen[k]; n > 0 {
			k = k + "#" + strconv.Itoa(n)
		}
		seen[r.keyFn(item, i)]++
		keys[i] = k
	}

	// Removal pass: discard entries whose key vanished.
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	for k, e := range r.entries {
		if !keep[k] {
			r.dropEntry(e)
			delete(r.entries, k)
		}
	}

	// Reconciliation pass: one forward cursor walk starting at the anchor.
	cursor := r.anchor
	for i, item := range items {
		k := keys[i]
		e, exists := r.entries[k]
		if exists {
			// The sequence path reports coarse changes, so an unchanged key
			// can still carry mutated content underneath. Repopulate always.
			e.item = item
			e.index = i
			r.populate(e)
			if e.node.PrevSibling() != cursor {
				parent.InsertAfter(e.node, cursor)
				r.moved++
			}
		} else {
			e = &entry{key: k, node: r.template.Clone(), item: item, index: i}
			e.vars = make(map[string]any, len(r.parent)+2)
			for pk, pv := range r.parent {
				e.vars[pk] = pv
			}
			r.entries[k] = e
			parent.InsertAfter(e.node, cursor)
			r.populate(e)
			r.bindNested(e)
			r.created++
		}
		cursor = e.node
	}

	r.order = keys
}

// populate refreshes the loop-variable context and writes the bound
// sub-values inside the item's subtree, then re-renders any nested
// reconcilers that resolve through it.
func (r *reconciler) populate(e *entry) {
	e.vars[r.expr.LoopVar] = e.item
	if r.expr.IndexVar != "" {
		e.vars[r.expr.IndexVar] = e.index
	}

	e.node.Walk(func(n *dom.Node) bool {
		if _, ok := n.Attr(AttrFor); ok {
			return false // nested reconciler territory
		}
		path, ok := n.Attr(AttrBind)
		if !ok {
			return true
		}
		v := r.resolveItemPath(path, e)
		if n.IsControl() {
			writeControl(n, v)
		} else {
			n.SetText(display(v))
		}
		return true
	})

	for _, child := range e.children {
		if child.relative() {
			child.render()
		}
	}
}

// bindNested defers nested collection markers inside a fresh item to the
// next scheduling tick: the clone must be attached to the live tree before
// its own bindings run.
func (r *reconciler) bindNested(e *entry) {
	// The item node itself can carry a value marker; keep outer scans
	// away from it too.
	if _, ok := e.node.Attr(AttrBind); ok {
		if r.sc.markProcessed(e.node) {
			e.marked = append(e.marked, e.node)
		}
	}

	var nested []*dom.Node
	for _, top := range e.node.Children() {
		top.Walk(func(n *dom.Node) bool {
			if _, ok := n.Attr(AttrFor); ok {
				nested = append(nested, n)
				return false
			}
			if _, ok := n.Attr(AttrBind); ok {
				// Owned by this reconciler's populate pass; keep outer
				// scans away from it.
				if r.sc.markProcessed(n) {
					e.marked = append(e.marked, n)
				}
			}
			return true
		})
	}

	for _, n := range nested {
		if r.sc.markProcessed(n) {
			e.marked = append(e.marked, n)
		}
		node := n
		r.sc.store.NextTick(func() {
			if !r.sc.root.Contains(node) {
				return // item was removed before the tick
			}
			if child := r.sc.buildLoop(node, e.vars); child != nil {
				e.children = append(e.children, child)
			}
		})
	}
}

// dropEntry detaches a dead item and releases everything it owned.
func (r *reconciler) dropEntry(e *entry) {
	for _, child := range e.children {
		child.destroy()
	}
	for _, n := range e.marked {
		r.sc.unmarkProcessed(n)
	}
	e.node.Detach()
	r.removed++
}

// clear drops every rendered entry. Used when the source is missing or not
// a sequence, and by destroy.
func (r *reconciler) clear() {
	for k, e := range r.entries {
		r.dropEntry(e)
		delete(r.entries, k)
	}
	r.order = nil
}

// destroy detaches all rendered entries and stops future renders. The
// anchor is owned by the caller and stays in place.
func (r *reconciler) destroy() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	r.clear()
}

// resolveItemPath resolves a bound path inside an item: loop variables
// first, then the root graph.
func (r *reconciler) resolveItemPath(path string, e *entry) any {
	seg, rest, hasRest := cutPath(path)
	if v, ok := e.vars[seg]; ok {
		if !hasRest {
			return v
		}
		return walkRaw(v, rest)
	}
	return r.sc.store.Lookup(path)
}

// cutPath splits "a.b.c" into "a" and ["b","c"].
func cutPath(path string) (first string, rest []string, hasRest bool) {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return path[:i], splitSegs(path[i+1:]), true
		}
	}
	return path, nil, false
}

func splitSegs(p string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '.' {
			out = append(out, p[start:i])
			start = i + 1
		}
	}
	return out
}

// walkRaw descends raw records by segment, nil when the path crosses a
// non-record value.
func walkRaw(v any, segs []string) any {
	for _, seg := range segs {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[seg]
	}
	return v
}
