package dom

import (
	"html"
	"sort"
	"strings"
)

// voidTags render without a closing tag.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

// RenderHTML serializes the subtree to HTML. All text and attribute values
// pass through the escaper before reaching the output; anchors render as
// comments so positions survive a serialization round trip visually.
func (n *Node) RenderHTML() string {
	var b strings.Builder
	n.renderTo(&b)
	return b.String()
}

// RenderHTML serializes a subtree to HTML.
func RenderHTML(n *Node) string {
	return n.RenderHTML()
}

func (n *Node) renderTo(b *strings.Builder) {
	switch n.kind {
	case KindText:
		b.WriteString(html.EscapeString(n.text))
	case KindAnchor:
		b.WriteString("<!--")
		b.WriteString(html.EscapeString(n.text))
		b.WriteString("-->")
	case KindElement:
		b.WriteByte('<')
		b.WriteString(n.tag)
		for _, k := range sortedAttrNames(n.attrs) {
			b.WriteByte(' ')
			b.WriteString(k)
			if v := n.attrs[k]; v != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(v))
				b.WriteByte('"')
			}
		}
		if n.IsControl() && n.value != "" {
			b.WriteString(` value="`)
			b.WriteString(html.EscapeString(n.value))
			b.WriteByte('"')
		}
		if n.checked {
			b.WriteString(" checked")
		}
		if voidTags[n.tag] {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.children {
			c.renderTo(b)
		}
		b.WriteString("</")
		b.WriteString(n.tag)
		b.WriteByte('>')
	}
}

// sortedAttrNames keeps serialization deterministic.
func sortedAttrNames(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
