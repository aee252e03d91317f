// Package server provides the Reflow sync server: an HTTP/WebSocket
// front end over a state container that streams path changes to
// connected sessions and applies writes arriving from them.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	GET  /metrics       Prometheus metrics
//	GET  /state         JSON snapshot of the data graph
//	PUT  /state/{path}  write one path (JSON body is the value)
//	GET  /stats         container and server counters
//	GET  /ws            sync socket
//
// The sync socket speaks JSON frames. A client subscribes to dotted
// paths and receives one change frame per flush for each subscribed
// path that changed:
//
//	> {"op": "subscribe", "path": "user.name"}
//	> {"op": "set", "path": "user.name", "value": "Ada"}
//	< {"op": "change", "path": "user.name", "value": "Ada"}
package server
