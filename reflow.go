// Package reflow provides the public API for the Reflow reactive state
// library.
//
// This is the recommended import for most applications:
//
//	import "github.com/reflow-dev/reflow"
//
// Usage:
//
//	store, err := reflow.New(map[string]any{
//	    "user": map[string]any{"name": "Ada"},
//	})
//	store.Subscribe("user.name", func(v any) { fmt.Println(v) })
//	store.Set("user.name", "Grace")
//	store.FlushSync()
//
//	reflow.Bind(root, store)
package reflow

import (
	"github.com/reflow-dev/reflow/pkg/bind"
	"github.com/reflow-dev/reflow/pkg/dom"
	"github.com/reflow-dev/reflow/pkg/state"
)

// =============================================================================
// State container (pkg/state exposed at the root)
// =============================================================================

// Store is the observable state container over one data graph.
type Store = state.Store

// Object is the observable wrapper over one record in the graph.
type Object = state.Object

// List is the observable wrapper over one sequence in the graph.
type List = state.List

// Stats is a point-in-time snapshot of store activity.
type Stats = state.Stats

// Callback receives the value of a subscribed path after a flush.
type Callback = state.Callback

// Unsubscribe removes a subscription when called.
type Unsubscribe = state.Unsubscribe

// Option configures a Store.
type Option = state.Option

// Sentinel errors of the state container.
var (
	ErrInvalidGraph = state.ErrInvalidGraph
	ErrDestroyed    = state.ErrDestroyed
)

// New creates a Store over the given data graph. The graph must be a
// record at the root.
func New(graph any, opts ...Option) (*Store, error) {
	return state.New(graph, opts...)
}

// WithLogger sets the store's logger.
var WithLogger = state.WithLogger

// ValidPath reports whether p is a well-formed dotted path.
var ValidPath = state.ValidPath

// =============================================================================
// Declarative binding (pkg/bind, pkg/dom)
// =============================================================================

// Node is one node of the bindable tree.
type Node = dom.Node

// Event is a user interaction dispatched to a bound control.
type Event = dom.Event

// NewElement creates an element node.
var NewElement = dom.NewElement

// NewText creates a text node.
var NewText = dom.NewText

// RenderHTML renders a tree to HTML.
var RenderHTML = dom.RenderHTML

// Bind scans the tree under root for binding markers and wires them to
// the store. Calling it again on the same root is a no-op for markers
// already bound.
var Bind = bind.Bind

// Unbind releases everything Bind set up under root.
var Unbind = bind.Unbind
