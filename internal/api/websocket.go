package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"manhack-sim/internal/config"
	"manhack-sim/internal/logging"
)

const (
	// BroadcastInterval is how often snapshots are pushed to clients.
	BroadcastInterval = 100 * time.Millisecond

	writeWait = 2 * time.Second
)

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// wsMessage is the envelope of every frame sent to clients.
type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WebSocketHub manages all WebSocket connections with DoS protection
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	maxTotal  int
	wsLimiter *WebSocketRateLimiter
	upgrader  websocket.Upgrader
	log       zerolog.Logger
}

// NewWebSocketHub creates a hub limited by the given resource limits and
// accepting upgrades from the given origin patterns.
func NewWebSocketHub(limits config.ResourceLimits, origins []string, logger zerolog.Logger) *WebSocketHub {
	limits = withDefaults(limits)
	if origins == nil {
		origins = config.DefaultServer().CORSOrigins
	}

	h := &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		maxTotal:   limits.MaxWSConnections,
		wsLimiter:  NewWebSocketRateLimiter(limits.MaxWSPerIP),
		log:        logging.Component(logger, "ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin
			if origin == "" || IsAllowedOrigin(origin, origins) {
				return true
			}
			h.log.Warn().Str("origin", origin).Msg("⚠️ websocket connection rejected")
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run services registrations and broadcasts until Stop is called
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stop:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			h.log.Info().Str("ip", client.ip).Int("total", count).Msg("📱 client connected")
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.remove(conn)
				}
			}
			IncrementWSMessages()
		}
	}
}

func (h *WebSocketHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	client, ok := h.clients[conn]
	if ok {
		h.wsLimiter.Release(client.ip)
		delete(h.clients, conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	conn.Close()
	h.log.Info().Int("remaining", count).Msg("📱 client disconnected")
	UpdateWSConnections(count)
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		h.wsLimiter.Release(client.ip)
		conn.Close()
		delete(h.clients, conn)
	}
	UpdateWSConnections(0)
}

// Stop closes every connection and ends Run.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Broadcast queues a message for every client. It drops the message when
// the queue is full.
func (h *WebSocketHub) Broadcast(event string, data interface{}) bool {
	jsonBytes, err := json.Marshal(wsMessage{Event: event, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("websocket encode failed")
		return false
	}

	select {
	case h.broadcast <- jsonBytes:
		return true
	default:
		return false
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes a "state" message whenever the engine publishes
// a new snapshot. It returns when the hub stops.
func (h *WebSocketHub) StartBroadcastLoop(engine EngineInterface, interval time.Duration) {
	if interval <= 0 {
		interval = BroadcastInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		var lastSeq uint64
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
			}
			if h.ClientCount() == 0 {
				continue
			}
			snap := engine.GetSnapshot()
			if snap == nil || (snap.Sequence == lastSeq && lastSeq != 0) {
				continue
			}
			lastSeq = snap.Sequence
			h.Broadcast("state", snap)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= h.maxTotal {
		h.log.Warn().Int("total", total).Msg("⚠️ websocket rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		writeError(w, http.StatusServiceUnavailable, "too many connections")
		return
	}

	if !h.wsLimiter.Allow(ip) {
		h.log.Warn().Str("ip", ip).Msg("⚠️ websocket rejected: per-IP limit reached")
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, http.StatusTooManyRequests, "too many connections from your IP")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Str("ip", ip).Msg("websocket upgrade failed")
		h.wsLimiter.Release(ip)
		return
	}

	select {
	case h.register <- &wsClient{conn: conn, ip: ip}:
	case <-h.stop:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	// Clients only listen. Reading keeps control frames flowing and
	// detects the close.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.stop:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
