package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/service"
)

const (
	pingInterval = 25 * time.Second
	writeTimeout = 10 * time.Second
	sendQueue    = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is pushed to every socket of the user who owns the changed profile.
type Event struct {
	Type      string              `json:"type"`
	ProfileID string              `json:"profileId"`
	Summary   *service.DaySummary `json:"summary,omitempty"`
}

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *wsClient) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks open sockets per user. Each socket has one writer goroutine
// draining a FIFO queue, so events reach a socket in the order they were
// published.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*wsClient]struct{})}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*wsClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if set := h.clients[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Connections returns the number of open sockets for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish queues ev on every socket of userID. A socket whose queue is full
// is dropped rather than blocking the publisher.
func (h *Hub) Publish(userID string, ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("marshal realtime event", "error", err)
		return
	}
	var slow []*wsClient
	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range slow {
		logger.Warn("dropping slow realtime socket", "user_id", userID)
		h.unregister(c)
	}
}

func (h *Hub) writeLoop(c *wsClient) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				h.unregister(c)
				return
			}
		case <-t.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &wsClient{userID: claimsOf(c).UserID, conn: conn, send: make(chan []byte, sendQueue)}
	s.hub.register(cl)
	go s.hub.writeLoop(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.unregister(cl)
			return
		}
	}
}

// publishSummary queues the day's summary after a change to profileID. Callers
// hold the profile lock so summaries are queued in mutation order.
func (s *Server) publishSummary(userID, profileID, date string) {
	if s.hub.Connections(userID) == 0 {
		return
	}
	sum, err := service.DailySummary(s.db, profileID, date)
	if err != nil {
		logger.Warn("build realtime summary", "profile_id", profileID, "error", err)
		return
	}
	s.hub.Publish(userID, Event{Type: "summary", ProfileID: profileID, Summary: &sum})
}
