package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reflow-dev/reflow/pkg/bind"
	"github.com/reflow-dev/reflow/pkg/dom"
	"github.com/reflow-dev/reflow/pkg/state"
)

func newTestServer(t *testing.T, graph map[string]any, config *Config) (*Server, *httptest.Server) {
	t.Helper()
	store, err := state.New(graph)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	srv := New(store, config)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		store.Destroy()
	})
	return srv, ts
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{}, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRootServesRenderedTree(t *testing.T) {
	srv, ts := newTestServer(t, map[string]any{"title": "hello"}, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status without tree = %d, want 404", resp.StatusCode)
	}

	tree := dom.NewElement("h1")
	tree.SetAttr(bind.AttrBind, "title")
	bind.Bind(tree, srv.store)
	srv.store.FlushSync()
	srv.SetTree(tree)

	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hello") {
		t.Errorf("body = %q, want bound title rendered", body)
	}
}

func TestSnapshotAndSet(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{"user": map[string]any{"name": "Ada"}}, nil)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/state/user.name", strings.NewReader(`"Grace"`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var graph map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&graph); err != nil {
		t.Fatal(err)
	}
	user, _ := graph["user"].(map[string]any)
	if user["name"] != "Grace" {
		t.Errorf("snapshot user.name = %v, want Grace", user["name"])
	}
}

func TestSetRejectsInvalidPath(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{}, nil)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/state/1bad", strings.NewReader(`1`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSetRejectedWhenReadOnly(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{}, &Config{ReadOnly: true})

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/state/a", strings.NewReader(`1`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{}, nil)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 0 {
		t.Errorf("sessions = %d, want 0", stats.Sessions)
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

func TestWebSocketSnapshotOnConnect(t *testing.T) {
	srv, ts := newTestServer(t, map[string]any{"count": float64(1)}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	f := readFrame(t, conn)
	if f.Op != OpSnapshot {
		t.Fatalf("first frame op = %q, want snapshot", f.Op)
	}
	snap, _ := f.Value.(map[string]any)
	if snap["count"] != float64(1) {
		t.Errorf("snapshot count = %v, want 1", snap["count"])
	}
	if srv.SessionCount() != 1 {
		t.Errorf("session count = %d, want 1", srv.SessionCount())
	}
}

func TestWebSocketSubscribeAndSet(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{"user": map[string]any{"name": "Ada"}}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readFrame(t, conn) // snapshot

	conn.WriteJSON(Frame{Op: OpSubscribe, Path: "user.name"})
	conn.WriteJSON(Frame{Op: OpSet, Path: "user.name", Value: "Grace"})

	f := readFrame(t, conn)
	if f.Op != OpChange || f.Path != "user.name" {
		t.Fatalf("frame = %+v, want change on user.name", f)
	}
	if f.Value != "Grace" {
		t.Errorf("value = %v, want Grace", f.Value)
	}
}

func TestWebSocketInvalidPath(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{}, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readFrame(t, conn) // snapshot

	conn.WriteJSON(Frame{Op: OpSubscribe, Path: "not a path"})
	f := readFrame(t, conn)
	if f.Op != OpError {
		t.Errorf("frame op = %q, want error", f.Op)
	}
}

func TestWebSocketReadOnlyRejectsSet(t *testing.T) {
	_, ts := newTestServer(t, map[string]any{"a": float64(1)}, &Config{ReadOnly: true})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readFrame(t, conn) // snapshot

	conn.WriteJSON(Frame{Op: OpSet, Path: "a", Value: float64(2)})
	f := readFrame(t, conn)
	if f.Op != OpError {
		t.Errorf("frame op = %q, want error", f.Op)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{Address: ":0"}).withDefaults()
	if cfg.SendBuffer != 64 {
		t.Errorf("SendBuffer = %d, want 64", cfg.SendBuffer)
	}
	if cfg.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %v, want 30s", cfg.PingInterval)
	}
	if cfg.Address != ":0" {
		t.Errorf("Address = %q, want :0", cfg.Address)
	}
}
