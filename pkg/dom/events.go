package dom

// Event is delivered to listeners when a node fires.
type Event struct {
	// Type is the event name: "input", "change", "click", ...
	Type string

	// Target is the node the event fired on. Events do not bubble.
	Target *Node
}

// Handler receives events.
type Handler func(Event)

type listener struct {
	id uint64
	fn Handler
}

// On registers a handler for the given event type and returns the function
// that removes it.
func (n *Node) On(event string, fn Handler) func() {
	if fn == nil {
		return func() {}
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	n.nextLID++
	l := &listener{id: n.nextLID, fn: fn}
	n.listeners[event] = append(n.listeners[event], l)

	return func() {
		list := n.listeners[event]
		for i, cur := range list {
			if cur.id == l.id {
				n.listeners[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of handlers registered for event.
func (n *Node) ListenerCount(event string) int {
	return len(n.listeners[event])
}

// Fire dispatches an event of the given type to the node's handlers, in
// registration order. Handlers registered during dispatch do not run for
// the current event.
func (n *Node) Fire(event string) {
	list := n.listeners[event]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)

	ev := Event{Type: event, Target: n}
	for _, l := range snapshot {
		l.fn(ev)
	}
}
