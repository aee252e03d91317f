// Package state implements the observable state container at the heart of
// Reflow: a wrapper layer over a plain data graph that intercepts reads and
// writes, a change scheduler that coalesces writes into one notification per
// path per tick, and a path subscription registry.
//
// The container never copies application data. Reading a nested object
// lazily produces a Wrapper cached by raw-node identity, so repeated reads
// return the same instance. Writes are compared under strict (identity)
// equality and reported to the scheduler only when the value actually
// changed. Notification delivery is deferred: writes are visible to the
// graph immediately, but subscribers run at the next tick boundary unless
// FlushSync forces immediate delivery.
//
// Example:
//
//	store, err := state.New(map[string]any{
//	    "user": map[string]any{"name": "Ada"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	unsub := store.Subscribe("user.name", func(v any) {
//	    fmt.Println("name is now", v)
//	})
//	store.Set("user.name", "Grace")
//	store.FlushSync() // delivers exactly one notification with "Grace"
//	unsub()
package state
