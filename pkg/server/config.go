package server

import (
	"net/http"
	"time"
)

// Config holds sync server settings.
type Config struct {
	// Address is the host:port to listen on.
	Address string

	// ReadOnly rejects state writes arriving from sessions and the HTTP
	// write endpoint.
	ReadOnly bool

	// PingInterval is the websocket keepalive interval. A session whose
	// pongs stop arriving is closed after two missed intervals.
	PingInterval time.Duration

	// SendBuffer is the per-session outbound frame buffer. A session
	// that cannot drain its buffer has frames dropped, not the server
	// blocked.
	SendBuffer int

	// ReadLimit caps the size of one inbound websocket message.
	ReadLimit int64

	// CheckOrigin validates the websocket handshake origin. The default
	// accepts all origins.
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds one outbound websocket write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default sync server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         "localhost:8090",
		PingInterval:    30 * time.Second,
		SendBuffer:      64,
		ReadLimit:       1 << 20,
		CheckOrigin:     func(*http.Request) bool { return true },
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// withDefaults fills in default values for unset fields.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}
