package el

import "github.com/reflow-dev/reflow/pkg/dom"

// Attr is one attribute applied to an element.
type Attr struct {
	Name  string
	Value string
}

// New builds an element with the given tag. Arguments are interpreted
// by type: Attr values set attributes, *dom.Node values become
// children, strings become text children. Nil arguments are skipped.
//
// The attribute names "value" and "checked" set control state instead
// of plain attributes.
func New(tag string, args ...any) *dom.Node {
	n := dom.NewElement(tag)
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case Attr:
			applyAttr(n, v)
		case []Attr:
			for _, a := range v {
				applyAttr(n, a)
			}
		case *dom.Node:
			if v != nil {
				n.AppendChild(v)
			}
		case []*dom.Node:
			for _, c := range v {
				if c != nil {
					n.AppendChild(c)
				}
			}
		case string:
			n.AppendChild(dom.NewText(v))
		}
	}
	return n
}

func applyAttr(n *dom.Node, a Attr) {
	switch a.Name {
	case "value":
		n.SetValue(a.Value)
	case "checked":
		n.SetChecked(a.Value == "true")
	default:
		n.SetAttr(a.Name, a.Value)
	}
}

// Text creates a text node.
func Text(s string) *dom.Node {
	return dom.NewText(s)
}

func Div(args ...any) *dom.Node      { return New("div", args...) }
func Span(args ...any) *dom.Node     { return New("span", args...) }
func P(args ...any) *dom.Node        { return New("p", args...) }
func Main(args ...any) *dom.Node     { return New("main", args...) }
func Section(args ...any) *dom.Node  { return New("section", args...) }
func Header(args ...any) *dom.Node   { return New("header", args...) }
func Footer(args ...any) *dom.Node   { return New("footer", args...) }
func Nav(args ...any) *dom.Node      { return New("nav", args...) }
func H1(args ...any) *dom.Node       { return New("h1", args...) }
func H2(args ...any) *dom.Node       { return New("h2", args...) }
func H3(args ...any) *dom.Node       { return New("h3", args...) }
func Ul(args ...any) *dom.Node       { return New("ul", args...) }
func Ol(args ...any) *dom.Node       { return New("ol", args...) }
func Li(args ...any) *dom.Node       { return New("li", args...) }
func Table(args ...any) *dom.Node    { return New("table", args...) }
func Tr(args ...any) *dom.Node       { return New("tr", args...) }
func Td(args ...any) *dom.Node       { return New("td", args...) }
func Th(args ...any) *dom.Node       { return New("th", args...) }
func Form(args ...any) *dom.Node     { return New("form", args...) }
func Label(args ...any) *dom.Node    { return New("label", args...) }
func Input(args ...any) *dom.Node    { return New("input", args...) }
func TextArea(args ...any) *dom.Node { return New("textarea", args...) }
func Select(args ...any) *dom.Node   { return New("select", args...) }
func OptionEl(args ...any) *dom.Node { return New("option", args...) }
func Button(args ...any) *dom.Node   { return New("button", args...) }
func A(args ...any) *dom.Node        { return New("a", args...) }
func Img(args ...any) *dom.Node      { return New("img", args...) }
func Strong(args ...any) *dom.Node   { return New("strong", args...) }
func Em(args ...any) *dom.Node       { return New("em", args...) }
func Small(args ...any) *dom.Node    { return New("small", args...) }
