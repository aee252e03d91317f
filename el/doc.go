// Package el provides a small DSL for building bindable trees.
//
// Element constructors take attributes, child nodes and strings in any
// order; strings become text nodes. Marker helpers attach the binding
// attributes the binder scans for:
//
//	import (
//	    "github.com/reflow-dev/reflow"
//	    . "github.com/reflow-dev/reflow/el"
//	)
//
//	root := Div(
//	    Span(BindTo("user.name")),
//	    Ul(Li(ForEach("item in items"), Key("item"), BindTo("item"))),
//	    Input(Type("email"), BindTo("user.email"), Validate("required|email")),
//	)
//	reflow.Bind(root, store)
package el
