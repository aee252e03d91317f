package bind

import (
	"testing"

	"github.com/reflow-dev/reflow/pkg/dom"
	"github.com/reflow-dev/reflow/pkg/state"
)

// itemTexts returns the rendered text of every node after the anchor.
func itemTexts(list *dom.Node) []string {
	var out []string
	past := false
	for _, c := range list.Children() {
		if c.Kind() == dom.KindAnchor {
			past = true
			continue
		}
		if past {
			out = append(out, c.Text())
		}
	}
	return out
}

// itemNodes returns the rendered item nodes in order.
func itemNodes(list *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, c := range list.Children() {
		if c.Kind() != dom.KindAnchor {
			out = append(out, c)
		}
	}
	return out
}

func findReconciler(t *testing.T, root *dom.Node) *reconciler {
	t.Helper()
	scopesMu.Lock()
	defer scopesMu.Unlock()
	sc, ok := scopes[root]
	if !ok || len(sc.reconcilers) == 0 {
		t.Fatal("no reconciler registered for root")
	}
	return sc.reconcilers[0]
}

func TestReconcilerRendersKeyedList(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b", "c"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	if got := itemTexts(list); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("rendered %v, want [a b c]", got)
	}
	if tmpl.Parent() != nil {
		t.Error("the template node must be detached from the live tree")
	}
}

func TestMoveNotRecreate(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b", "c"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	before := itemNodes(list)
	if len(before) != 3 {
		t.Fatalf("expected 3 rendered items, got %d", len(before))
	}
	nodeB, nodeC := before[1], before[2]

	s.Root().List("items").RemoveFirst()
	s.FlushSync()

	after := itemNodes(list)
	if len(after) != 2 {
		t.Fatalf("expected 2 rendered items, got %d", len(after))
	}
	if after[0] != nodeB || after[1] != nodeC {
		t.Error("surviving keys must keep the same rendered-node instances")
	}

	r := findReconciler(t, root)
	if r.created != 3 {
		t.Errorf("no extra creations expected, got %d", r.created)
	}
	if r.removed != 1 {
		t.Errorf("expected exactly one removal, got %d", r.removed)
	}
}

func TestLinearCreationBound(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b", "c"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	r := findReconciler(t, root)
	if r.created != 3 {
		t.Fatalf("initial render must create 3 nodes, got %d", r.created)
	}

	s.Root().List("items").Append("d", "e")
	s.FlushSync()

	if r.created != 5 {
		t.Errorf("rendering 2 new items must perform exactly 2 creations, got %d total", r.created)
	}
	if r.removed != 0 {
		t.Errorf("no removals expected, got %d", r.removed)
	}
}

func TestReorderMovesWithoutRecreating(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b", "c"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	before := itemNodes(list)
	s.Root().List("items").Reverse()
	s.FlushSync()

	after := itemNodes(list)
	if got := itemTexts(list); got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("rendered %v, want [c b a]", got)
	}
	if after[0] != before[2] || after[2] != before[0] {
		t.Error("reorder must relocate the existing node instances")
	}

	r := findReconciler(t, root)
	if r.created != 3 {
		t.Errorf("reorder must not create nodes, got %d creations", r.created)
	}
	if r.moved == 0 {
		t.Error("reorder must register moves")
	}
}

func TestRecordItemsWithKeyProperty(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{
		"users": []any{
			map[string]any{"id": 1, "name": "Alice"},
			map[string]any{"id": 2, "name": "Bob"},
		},
	})
	tmpl := el("li", map[string]string{AttrFor: "u in users", AttrKey: "id"},
		el("span", map[string]string{AttrBind: "u.name"}))
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	if got := itemTexts(list); got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("rendered %v", got)
	}

	// Mutating one record coalesces onto the list path and repopulates.
	u0 := s.Root().List("users").Item(0).(*state.Object)
	u0.Set("name", "Ada")
	s.FlushSync()

	if got := itemTexts(list); got[0] != "Ada" {
		t.Errorf("after item change rendered %v, want Ada first", got)
	}

	r := findReconciler(t, root)
	if r.created != 2 {
		t.Errorf("item mutation must not recreate nodes, got %d creations", r.created)
	}
}

func TestIndexVariable(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"x", "y"}})
	tmpl := el("li", map[string]string{AttrFor: "(item, i) in items", AttrKey: "item"},
		el("b", map[string]string{AttrBind: "i"}),
		el("span", map[string]string{AttrBind: "item"}))
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	nodes := itemNodes(list)
	if nodes[0].Text() != "0x" || nodes[1].Text() != "1y" {
		t.Errorf("rendered %q / %q", nodes[0].Text(), nodes[1].Text())
	}

	// Removing the first item shifts the survivor's index.
	s.Root().List("items").RemoveFirst()
	s.FlushSync()
	nodes = itemNodes(list)
	if len(nodes) != 1 || nodes[0].Text() != "0y" {
		t.Errorf("after removal rendered %v", itemTexts(list))
	}
}

func TestRebindKeepsCollectionsIntact(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)
	before := itemNodes(list)

	// A second scan over the same root must not duplicate anything: the
	// anchor is processed and the rendered items' markers are claimed by
	// the reconciler.
	Bind(root, s)

	after := itemNodes(list)
	if len(after) != len(before) {
		t.Fatalf("rebind changed item count: %d -> %d", len(before), len(after))
	}
	scopesMu.Lock()
	n := len(scopes[root].reconcilers)
	scopesMu.Unlock()
	if n != 1 {
		t.Errorf("reconciler count = %d, want 1", n)
	}
}

func TestNonSequenceSourceClears(t *testing.T) {
	s, _ := newBindStore(t, map[string]any{"items": []any{"a", "b"}})
	tmpl := el("li", map[string]string{AttrFor: "item in items", AttrKey: "item", AttrBind: "item"})
	list := el("ul", nil, tmpl)
	root := el("div", nil, list)

	Bind(root, s)
	defer Unbind(root)

	if len(itemNodes(list)) != 2 {
		t.Fatal("expected initial render")
	}

	s.Set("items", "oops")
	s.FlushSync()

	if got := len(itemNodes(list)); got != 0 {
		t.Errorf("non-sequence source must clear all items, %d remain", got)
	}
}

func TestNestedCollections(t *testing.T) {
	s, tick := newBindStore(t, map[string]any{
		"groups": []any{
			map[string]any{"name": "g1", "members": []any{"a", "b"}},
			map[string]any{"name": "g2", "members": []any{"c"}},
		},
	})
	inner := el("li", map[string]string{AttrFor: "m in g.members", AttrKey: "m", AttrBind: "m"})
	tmpl := el("section", map[string]string{AttrFor: "g in groups", AttrKey: "name"},
		el("h2", map[string]string{AttrBind: "g.name"}),
		el("ul", nil, inner))
	root := el("div", nil, el("main", nil, tmpl))

	Bind(root, s)
	// Nested markers materialize on the next tick, once items are attached.
	tick.drain()
	defer Unbind(root)

	sections := itemNodes(root.Children()[0])
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	ul := sections[0].Children()[1]
	if got := itemTexts(ul); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("nested render of g1: %v", got)
	}
	ul2 := sections[1].Children()[1]
	if got := itemTexts(ul2); len(got) != 1 || got[0] != "c" {
		t.Errorf("nested render of g2: %v", got)
	}

	// A nested mutation notifies the outer path coarsely and flows down.
	g1 := s.Root().List("groups").Item(0).(*state.Object)
	g1.List("members").Append("z")
	s.FlushSync()
	tick.drain()

	if got := itemTexts(ul); len(got) != 3 || got[2] != "z" {
		t.Errorf("nested render after append: %v", got)
	}
}
