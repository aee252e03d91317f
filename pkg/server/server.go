package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-dev/reflow/pkg/dom"
	"github.com/reflow-dev/reflow/pkg/middleware"
	"github.com/reflow-dev/reflow/pkg/state"
)

// Server is the HTTP/WebSocket sync server over one state container.
type Server struct {
	store  *state.Store
	config *Config

	mu       sync.Mutex
	sessions map[string]*Session
	tree     *dom.Node

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server

	metrics *MetricsCollector
	tracer  trace.Tracer
	logger  *slog.Logger
}

// New creates a sync server over the given container. A nil config
// uses DefaultConfig; unset fields are filled with defaults.
func New(store *state.Store, config *Config) *Server {
	config = config.withDefaults()

	s := &Server{
		store:    store,
		config:   config,
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics: NewMetricsCollector(),
		tracer:  otel.Tracer("reflow"),
		logger:  slog.Default().With("component", "server"),
	}
	s.router = s.routes()
	return s
}

// routes builds the HTTP router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Prometheus())
	r.Use(middleware.OpenTelemetry())

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/state", s.handleSnapshot)
	r.Put("/state/{path}", s.handleSet)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.handleWS)
	return r
}

// Handler returns the server's HTTP handler, for mounting inside a
// larger router or an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on the configured address and blocks until
// the server is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.router,
	}
	s.logger.Info("sync server listening", "addr", s.config.Address)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server: the listener closes first,
// then every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
	return err
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	s.metrics.sessionOpened()
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
	s.metrics.sessionClosed()
}

// SetTree installs the node tree served at "/". Callers bind the tree
// to the container before installing it; the handler flushes pending
// changes so the render reflects the latest writes.
func (s *Server) SetTree(n *dom.Node) {
	s.mu.Lock()
	s.tree = n
	s.mu.Unlock()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()
	if tree == nil {
		http.NotFound(w, r)
		return
	}

	s.store.FlushSync()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(dom.RenderHTML(tree)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleSnapshot serves the raw data graph as JSON.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.store.Root().Raw()); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}

// handleSet applies one write from the HTTP surface. The path is the
// URL parameter, the JSON body is the value.
func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	if s.config.ReadOnly {
		http.Error(w, "server is read-only", http.StatusForbidden)
		return
	}

	path := chi.URLParam(r, "path")
	if !state.ValidPath(path) {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	var value any
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.applyWrite(r.Context(), "http", path, value)
	w.WriteHeader(http.StatusNoContent)
}

// applyWrite performs one traced write against the container.
func (s *Server) applyWrite(ctx context.Context, origin, path string, value any) {
	_, span := s.tracer.Start(ctx, "state.set",
		trace.WithAttributes(writeAttributes(origin, path)...))
	defer span.End()

	s.store.Set(path, value)
	s.metrics.writeApplied()
}

type statsResponse struct {
	State    state.Stats `json:"state"`
	Server   Snapshot    `json:"server"`
	Sessions int         `json:"sessions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		State:    s.store.Stats(),
		Server:   s.metrics.Snapshot(),
		Sessions: s.SessionCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("stats encode failed", "error", err)
	}
}

// handleWS upgrades the connection and runs the session loops.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.readError()
		return
	}

	sess := newSession(s, conn)
	s.addSession(sess)
	s.logger.Info("session opened", "session", sess.ID(), "remote", r.RemoteAddr)

	go sess.writeLoop()
	sess.push(Frame{Op: OpSnapshot, Value: s.store.Root().Raw()})
	go sess.readLoop()
}
