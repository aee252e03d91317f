// Package bind wires declarative path markers in a rendered node tree to an
// observable state container: one-way bindings re-render text on change,
// two-way bindings synchronize interactive controls with state (including a
// validation pipeline mirroring messages under the errors root), and
// collection markers get a keyed reconciler performing identity-preserving
// incremental list updates.
//
// Markers are plain attributes:
//
//	<span data-bind="user.name">
//	<input data-bind="user.age" type="number" data-validate="required|min:18">
//	<li data-for="item in items" data-key="id"><span data-bind="item.name"></span></li>
//
// Bind is idempotent per root: rebinding an already-processed subtree never
// double-attaches listeners. Unbind reverses everything Bind wired,
// including nested reconcilers.
//
// Like the container it binds to, the package follows the engine's
// cooperative execution model: callers drive it from one goroutine (or the
// store's tick callbacks), not concurrently.
package bind
