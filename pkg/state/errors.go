package state

import "errors"

// ErrInvalidGraph is returned by New when the initial graph is not an
// object-like value. This is the one hard, caller-visible failure in the
// engine; every other misuse degrades to a logged warning.
var ErrInvalidGraph = errors.New("state: initial graph must be a map[string]any")

// ErrDestroyed is returned by operations attempted after Destroy.
var ErrDestroyed = errors.New("state: store has been destroyed")
