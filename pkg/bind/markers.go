package bind

import (
	"fmt"
	"regexp"

	"github.com/reflow-dev/reflow/pkg/state"
)

// Declarative marker attributes recognized on rendered nodes.
const (
	// AttrBind holds a scalar binding path, e.g. data-bind="user.name".
	AttrBind = "data-bind"

	// AttrFor holds a collection binding, e.g. data-for="item in items" or
	// data-for="(item, i) in items".
	AttrFor = "data-for"

	// AttrKey names the key selector for a collection: a sub-property of the
	// loop variable, or the bare loop variable for primitive collections.
	AttrKey = "data-key"

	// AttrValidate holds a pipe-separated validation rule string.
	AttrValidate = "data-validate"
)

// errorsRoot is the reserved root under which validation messages mirror
// their source paths: a rule failure for "user.age" lands at
// "errors.user.age".
const errorsRoot = "errors"

// loopRE matches the collection-loop grammar:
//
//	item in items
//	(item, index) in items
var loopRE = regexp.MustCompile(
	`^\s*(?:\(\s*([a-zA-Z_$][a-zA-Z0-9_$]*)\s*,\s*([a-zA-Z_$][a-zA-Z0-9_$]*)\s*\)|([a-zA-Z_$][a-zA-Z0-9_$]*))\s+in\s+(\S+)\s*$`)

// loopExpr is a parsed collection binding.
type loopExpr struct {
	LoopVar  string
	IndexVar string // empty without the (item, index) form
	Source   string // dotted path of the source sequence
}

// parseLoop parses a data-for expression, validating the source path
// against the path grammar.
func parseLoop(expr string) (loopExpr, error) {
	m := loopRE.FindStringSubmatch(expr)
	if m == nil {
		return loopExpr{}, fmt.Errorf("bind: malformed loop %q", expr)
	}

	out := loopExpr{LoopVar: m[3], IndexVar: m[2], Source: m[4]}
	if out.LoopVar == "" {
		out.LoopVar = m[1]
	}
	if !state.ValidPath(out.Source) {
		return loopExpr{}, fmt.Errorf("bind: invalid source path %q in loop %q", out.Source, expr)
	}
	if out.IndexVar == out.LoopVar {
		return loopExpr{}, fmt.Errorf("bind: loop and index variable collide in %q", expr)
	}
	return out, nil
}
