package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/models"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams public round events to spectators. It implements
// services.Broadcaster.
type WebSocketHandler struct {
	hub *WebSocketHub
}

type WebSocketHub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	count      chan chan int
	done       chan struct{}
	closeOnce  sync.Once
}

type Client struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WriteJSON serializes writes; gorilla connections allow one writer at a time.
func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

func NewWebSocketHandler() *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Failed to upgrade to WebSocket", "error", err)
		return
	}

	client := &Client{Conn: conn}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case h.hub.unregister <- client:
		case <-h.hub.done:
		}
		conn.Close()
	}()

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket closed", "error", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.sendPong(client)
	}
}

func (h *WebSocketHandler) sendPong(client *Client) {
	msg := Message{
		Type: "PONG",
		Data: gin.H{
			"timestamp": time.Now().Unix(),
		},
	}

	if err := client.WriteJSON(msg); err != nil {
		logger.Debug("Failed to send pong", "error", err)
	}
}

// Broadcast queues a round event for every connected client. Events are
// dropped rather than blocking a game request when the queue is full.
func (h *WebSocketHandler) Broadcast(event models.RoundEvent) {
	msg := &Message{Type: string(event.Type), Data: event}

	select {
	case h.hub.broadcast <- msg:
	case <-h.hub.done:
	default:
		logger.Warn("Feed queue full, dropping event", "type", event.Type)
	}
}

func (h *WebSocketHandler) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.hub.count <- reply:
	case <-h.hub.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.hub.done:
		return 0
	}
}

func (h *WebSocketHandler) Close() {
	h.hub.closeOnce.Do(func() {
		close(h.hub.done)
	})
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = struct{}{}
			logger.Debug("Feed client registered", "clients", len(hub.clients))

		case client := <-hub.unregister:
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				logger.Debug("Feed client unregistered", "clients", len(hub.clients))
			}

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)

		case reply := <-hub.count:
			reply <- len(hub.clients)

		case <-hub.done:
			for client := range hub.clients {
				client.Conn.Close()
			}
			return
		}
	}
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	for client := range hub.clients {
		if err := client.WriteJSON(message); err != nil {
			logger.Debug("Dropping feed client", "error", err)
			client.Conn.Close()
			delete(hub.clients, client)
		}
	}
}
