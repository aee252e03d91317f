package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/reflow-dev/reflow/pkg/state"
)

// Session is one live sync socket. Changes to subscribed paths are
// pushed as frames; set frames are applied to the container.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	send chan Frame

	mu   sync.Mutex
	subs map[string]state.Unsubscribe

	closeOnce sync.Once
	done      chan struct{}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// SECURITY: Fatal on entropy failure - weak IDs are dangerous
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(server *Server, conn *websocket.Conn) *Session {
	id := generateSessionID()
	return &Session{
		id:     id,
		server: server,
		conn:   conn,
		logger: server.logger.With("session", id),
		send:   make(chan Frame, server.config.SendBuffer),
		subs:   make(map[string]state.Unsubscribe),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// push queues one outbound frame. A session that cannot drain its
// buffer has the frame dropped rather than blocking the flush.
func (s *Session) push(f Frame) {
	select {
	case s.send <- f:
	case <-s.done:
	default:
		s.server.metrics.frameDropped()
		s.logger.Warn("outbound buffer full, dropping frame", "op", f.Op, "path", f.Path)
	}
}

// readLoop continuously reads frames from the socket until the
// connection closes or errors.
func (s *Session) readLoop() {
	defer s.Close()

	cfg := s.server.config
	pongWait := 2 * cfg.PingInterval
	s.conn.SetReadLimit(cfg.ReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.server.metrics.readError()
			}
			return
		}
		s.handleFrame(f)
	}
}

// handleFrame dispatches one inbound frame.
func (s *Session) handleFrame(f Frame) {
	switch f.Op {
	case OpSubscribe:
		s.subscribe(f.Path)

	case OpUnsubscribe:
		s.unsubscribe(f.Path)

	case OpSet:
		if s.server.config.ReadOnly {
			s.push(errorFrame("server is read-only"))
			return
		}
		if !state.ValidPath(f.Path) {
			s.push(errorFrame("invalid path: " + f.Path))
			return
		}
		s.server.applyWrite(context.Background(), "ws", f.Path, f.Value)

	default:
		s.logger.Warn("unknown frame op", "op", f.Op)
		s.push(errorFrame("unknown op: " + f.Op))
	}
}

// subscribe registers a container subscription whose notifications are
// forwarded to the socket as change frames.
func (s *Session) subscribe(path string) {
	if !state.ValidPath(path) {
		s.push(errorFrame("invalid path: " + path))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[path]; exists {
		return
	}
	p := path
	s.subs[p] = s.server.store.Subscribe(p, func(v any) {
		s.push(Frame{Op: OpChange, Path: p, Value: v})
	})
}

func (s *Session) unsubscribe(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unsub, ok := s.subs[path]; ok {
		unsub()
		delete(s.subs, path)
	}
}

// writeLoop drains the outbound buffer and keeps the connection alive
// with periodic pings.
func (s *Session) writeLoop() {
	cfg := s.server.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteJSON(f); err != nil {
				s.logger.Error("write error", "error", err)
				s.server.metrics.writeError()
				s.Close()
				return
			}
			s.server.metrics.frameSent()

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// Close tears the session down: subscriptions are released, the socket
// closed, and the session removed from the server.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		for path, unsub := range s.subs {
			unsub()
			delete(s.subs, path)
		}
		s.mu.Unlock()

		s.conn.Close()
		s.server.removeSession(s)
		s.logger.Info("session closed")
	})
}

func writeAttributes(origin, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("reflow.origin", origin),
		attribute.String("reflow.path", path),
	}
}
