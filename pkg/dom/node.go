package dom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <input>, etc.
	KindText                // plain text
	KindAnchor              // invisible position marker (comment-like)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindAnchor:
		return "Anchor"
	default:
		return "Unknown"
	}
}

// Node is one node in the live rendered tree.
type Node struct {
	kind     Kind
	tag      string
	attrs    map[string]string
	text     string
	parent   *Node
	children []*Node

	// Form-control state. Meaningful only for interactive elements.
	value   string
	checked bool

	listeners map[string][]*listener
	nextLID   uint64
}

// NewElement creates an element node with the given tag.
func NewElement(tag string) *Node {
	return &Node{kind: KindElement, tag: tag, attrs: make(map[string]string)}
}

// NewText creates a text node.
func NewText(text string) *Node {
	return &Node{kind: KindText, text: text}
}

// NewAnchor creates an anchor node: an invisible marker holding a fixed
// position in the tree, the way a comment node does in a document. The
// label is kept for debugging and serialization.
func NewAnchor(label string) *Node {
	return &Node{kind: KindAnchor, text: label}
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag, empty for non-elements.
func (n *Node) Tag() string { return n.tag }

// Parent returns the node's parent, nil for a detached or root node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a snapshot of the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// indexOf returns the position of c among n's children, -1 if absent.
func (n *Node) indexOf(c *Node) int {
	for i, ch := range n.children {
		if ch == c {
			return i
		}
	}
	return -1
}

// AppendChild adds c as the last child, detaching it from any previous
// parent first.
func (n *Node) AppendChild(c *Node) {
	if c == nil || c == n {
		return
	}
	c.Detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertAfter inserts c immediately after ref among n's children. A nil ref
// inserts at the front. If ref is not a child of n, c is appended.
func (n *Node) InsertAfter(c, ref *Node) {
	if c == nil || c == n {
		return
	}
	c.Detach()
	c.parent = n

	idx := 0
	if ref != nil {
		i := n.indexOf(ref)
		if i < 0 {
			c.parent = nil
			n.AppendChild(c)
			return
		}
		idx = i + 1
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = c
}

// Detach removes the node from its parent, if any. The node keeps its
// subtree and listeners and can be reinserted elsewhere.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// PrevSibling returns the node immediately before n, nil at the front or
// when detached.
func (n *Node) PrevSibling() *Node {
	p := n.parent
	if p == nil {
		return nil
	}
	i := p.indexOf(n)
	if i <= 0 {
		return nil
	}
	return p.children[i-1]
}

// NextSibling returns the node immediately after n, nil at the end or when
// detached.
func (n *Node) NextSibling() *Node {
	p := n.parent
	if p == nil {
		return nil
	}
	i := p.indexOf(n)
	if i < 0 || i+1 >= len(p.children) {
		return nil
	}
	return p.children[i+1]
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttr sets an attribute. No-op on non-elements.
func (n *Node) SetAttr(name, value string) *Node {
	if n.kind == KindElement {
		n.attrs[name] = value
	}
	return n
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(name string) {
	delete(n.attrs, name)
}

// Text returns the node's text: the text itself for text nodes, the
// concatenated descendant text for elements.
func (n *Node) Text() string {
	switch n.kind {
	case KindText:
		return n.text
	case KindElement:
		var out string
		for _, c := range n.children {
			out += c.Text()
		}
		return out
	default:
		return ""
	}
}

// SetText sets the node's displayed text. For elements this replaces the
// children with a single text node, like assigning textContent.
func (n *Node) SetText(text string) {
	switch n.kind {
	case KindText:
		n.text = text
	case KindElement:
		for _, c := range n.children {
			c.parent = nil
		}
		n.children = n.children[:0]
		n.AppendChild(NewText(text))
	}
}

// Value returns the control value.
func (n *Node) Value() string { return n.value }

// SetValue sets the control value.
func (n *Node) SetValue(v string) { n.value = v }

// Checked returns the control's toggle state.
func (n *Node) Checked() bool { return n.checked }

// SetChecked sets the control's toggle state.
func (n *Node) SetChecked(c bool) { n.checked = c }

// IsControl reports whether the node is an interactive form control.
func (n *Node) IsControl() bool {
	switch n.tag {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// IsMultiSelect reports whether the node is a multiple-selection control.
func (n *Node) IsMultiSelect() bool {
	_, multiple := n.attrs["multiple"]
	return n.tag == "select" && multiple
}

// SelectedValues returns the values of the selected option children of a
// select element, in document order.
func (n *Node) SelectedValues() []string {
	var out []string
	for _, c := range n.children {
		if c.tag != "option" {
			continue
		}
		if _, sel := c.attrs["selected"]; sel {
			v, ok := c.attrs["value"]
			if !ok {
				v = c.Text()
			}
			out = append(out, v)
		}
	}
	return out
}

// SetSelectedValues marks exactly the options whose value appears in values
// as selected.
func (n *Node) SetSelectedValues(values []string) {
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	for _, c := range n.children {
		if c.tag != "option" {
			continue
		}
		v, ok := c.attrs["value"]
		if !ok {
			v = c.Text()
		}
		if want[v] {
			c.attrs["selected"] = ""
		} else {
			delete(c.attrs, "selected")
		}
	}
}

// Clone returns a deep copy of the subtree. Attributes, text, and control
// state are copied; event listeners are not, matching host-tree cloning
// semantics.
func (n *Node) Clone() *Node {
	c := &Node{
		kind:    n.kind,
		tag:     n.tag,
		text:    n.text,
		value:   n.value,
		checked: n.checked,
	}
	if n.attrs != nil {
		c.attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			c.attrs[k] = v
		}
	}
	for _, ch := range n.children {
		cc := ch.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Walk visits the subtree in document order. Returning false from visit
// skips the node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(visit)
	}
}

// Contains reports whether d is n or a descendant of n.
func (n *Node) Contains(d *Node) bool {
	for cur := d; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}
