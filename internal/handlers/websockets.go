package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	// clientBuffer bounds the per-client outbound queue; a client that cannot
	// keep up is dropped rather than allowed to block the broadcasters.
	clientBuffer = 16
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// healthUpdate is the broadcast payload for one completed cycle.
type healthUpdate struct {
	Result          motormonitor.HealthResult     `json:"result"`
	Recommendations []motormonitor.Recommendation `json:"recommendations"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// Hub fans completed cycles and system events out to every connected client.
// It satisfies service.Publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan wsEnvelope]struct{}
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[chan wsEnvelope]struct{}),
		log:     log,
	}
}

// PublishHealth broadcasts one cycle's result with its recommendations.
func (hub *Hub) PublishHealth(result motormonitor.HealthResult, recs []motormonitor.Recommendation) {
	hub.broadcast(wsEnvelope{Type: "health", Data: healthUpdate{Result: result, Recommendations: recs}})
}

// PublishEvent broadcasts one system event.
func (hub *Hub) PublishEvent(e motormonitor.SystemEvent) {
	hub.broadcast(wsEnvelope{Type: "event", Data: e})
}

func (hub *Hub) broadcast(env wsEnvelope) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for ch := range hub.clients {
		select {
		case ch <- env:
		default:
			// Client queue full; close and let its writer loop exit.
			delete(hub.clients, ch)
			close(ch)
			if hub.log != nil {
				hub.log.Infow("ws_client_dropped_slow")
			}
		}
	}
}

func (hub *Hub) register() chan wsEnvelope {
	ch := make(chan wsEnvelope, clientBuffer)
	hub.mu.Lock()
	hub.clients[ch] = struct{}{}
	hub.mu.Unlock()
	return ch
}

func (hub *Hub) unregister(ch chan wsEnvelope) {
	hub.mu.Lock()
	if _, ok := hub.clients[ch]; ok {
		delete(hub.clients, ch)
		close(ch)
	}
	hub.mu.Unlock()
}

// clientCount reports the number of connected clients.
func (hub *Hub) clientCount() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

func (h *Handler) wsConnect(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "broadcasting disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	updates := h.hub.register()
	defer h.hub.unregister(updates)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// Send the latest known result immediately so a new client does not wait
	// for the next cycle.
	if res, err := h.services.Engine.Latest(c.Request.Context()); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(wsEnvelope{Type: "health", Data: healthUpdate{Result: res}}); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed_initial", "err", err)
			}
			return
		}
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case env, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}
