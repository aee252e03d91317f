package server

// Frame is one JSON message on the sync socket.
type Frame struct {
	Op    string `json:"op"`
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
	Msg   string `json:"msg,omitempty"`
}

// Frame operations. Clients send subscribe, unsubscribe and set; the
// server sends snapshot, change and error.
const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
	OpSet         = "set"
	OpSnapshot    = "snapshot"
	OpChange      = "change"
	OpError       = "error"
)

func errorFrame(msg string) Frame {
	return Frame{Op: OpError, Msg: msg}
}
