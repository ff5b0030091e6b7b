package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // replay progress is read-only; no CSRF surface to restrict
	},
}

// Client represents a WebSocket subscriber to one batch's progress.
type Client struct {
	BatchID uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Hub     *Hub
}

// Hub maintains active WebSocket connections and fans batch-progress
// updates out to their subscribers, grounded on the teacher's
// register/unregister/broadcast select loop.
type Hub struct {
	clients      map[*Client]bool
	batchClients map[uuid.UUID][]*Client
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *Client
	logger       *logrus.Logger
	mutex        sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		batchClients: make(map[uuid.UUID][]*Client),
		broadcast:    make(chan []byte, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		logger:       logger,
	}
}

// Run starts the hub and handles client registration/unregistration.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.batchClients[client.BatchID] = append(h.batchClients[client.BatchID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"batch_id":      client.BatchID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)

				batchClients := h.batchClients[client.BatchID]
				for i, c := range batchClients {
					if c == client {
						h.batchClients[client.BatchID] = append(batchClients[:i], batchClients[i+1:]...)
						break
					}
				}
				if len(h.batchClients[client.BatchID]) == 0 {
					delete(h.batchClients, client.BatchID)
				}
			}
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"batch_id":      client.BatchID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// HandleWebSocket upgrades a GET /ws/replays/:id request into a
// subscription on that batch's progress stream.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		BatchID: batchID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Hub:     h,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToBatch sends a progress update to every subscriber of one
// batch's progress stream.
func (h *Hub) BroadcastToBatch(batchID uuid.UUID, message interface{}) {
	h.mutex.RLock()
	clients := h.batchClients[batchID]
	h.mutex.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal WebSocket message")
		return
	}

	h.mutex.RLock()
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
	h.mutex.RUnlock()
}

// GetConnectionCount returns the total number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("failed to write WebSocket message")
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
