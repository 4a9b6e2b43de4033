package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"manhack-sim/internal/config"
	"manhack-sim/internal/logging"
)

func newTestHub(t *testing.T, limits config.ResourceLimits, e EngineInterface) (*WebSocketHub, string) {
	t.Helper()
	hub := NewWebSocketHub(limits, nil, logging.Nop())
	go hub.Run()
	if e != nil {
		hub.StartBroadcastLoop(e, 10*time.Millisecond)
	}
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		hub.Stop()
		ts.Close()
	})
	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestWebSocketStateFeed(t *testing.T) {
	e := newTestEngine(t)
	e.Step(0.1)
	_, url := newTestHub(t, config.ResourceLimits{MaxWSConnections: 1, MaxWSPerIP: 1}, e)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Event string `json:"event"`
		Data  struct {
			Sequence uint64 `json:"sequence"`
			Tick     uint64 `json:"tick"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if msg.Event != "state" {
		t.Errorf("Expected state event, got %q", msg.Event)
	}
	if msg.Data.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", msg.Data.Tick)
	}

	// the first client is registered once it has been served
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Second connection should be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 for total limit, got %v", resp)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, url := newTestHub(t, config.ResourceLimits{}, nil)

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("Foreign origin should be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}

	header.Set("Origin", "http://localhost:5173")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Local origin should be accepted: %v", err)
	}
	conn.Close()
}

func TestWebSocketBroadcastQueueFull(t *testing.T) {
	hub := NewWebSocketHub(config.ResourceLimits{}, nil, logging.Nop())
	// Run is not started, so the queue fills
	for i := 0; i < cap(hub.broadcast); i++ {
		if !hub.Broadcast("state", i) {
			t.Fatalf("Broadcast %d should be queued", i)
		}
	}
	if hub.Broadcast("state", "overflow") {
		t.Error("Broadcast should drop when the queue is full")
	}
}
