// Package dom provides the live node tree the binder and reconciler operate
// on: a small, mutable element/text tree with attributes, control values,
// event listeners, deep cloning, and escaped HTML serialization.
//
// The synchronization engine treats the host tree as an opaque capability;
// this package is the default in-memory implementation used by the binder,
// the demo server, and the tests. It models just enough of a rendered
// document (parent/child structure, attributes, form-control state, and
// per-node event dispatch) for declarative bindings to attach to.
package dom
