package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"shower_intake/internal/idgen"
)

// Board topics.
const (
	TopicQueue   = "queue"
	TopicShowers = "showers"
)

var topics = map[string]bool{TopicQueue: true, TopicShowers: true}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Event is what subscribers receive.
type Event struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Topic     string    `json:"topic"`
	At        time.Time `json:"at"`
	Data      any       `json:"data,omitempty"`
}

// Hub keeps websocket clients grouped by topic.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

// BroadcastMessage is an encoded event for one topic.
type BroadcastMessage struct {
	Topic   string
	Message []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub channels until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.Topic] {
				select {
				case client.Send <- message.Message:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.Send)
		if len(clients) == 0 {
			delete(h.clients, client.Topic)
		}
	}
}

// ClientCount returns how many clients are subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Publish encodes an event and queues it for the topic's subscribers. It never
// blocks; when the queue is full the event is dropped and logged.
func (h *Hub) Publish(topic, eventType string, data any) {
	msg, err := json.Marshal(Event{
		EventID:   idgen.NewEventID(),
		EventType: eventType,
		Topic:     topic,
		At:        time.Now(),
		Data:      data,
	})
	if err != nil {
		h.log.Error("encode board event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- BroadcastMessage{Topic: topic, Message: msg}:
	default:
		h.log.Warn("board event dropped", zap.String("topic", topic), zap.String("event_type", eventType))
	}
}

// Client is one websocket connection.
type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Topic string
}

// readPump only watches for the connection going away; clients do not send.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeTopic upgrades the request and subscribes the client to :topic.
func (h *Hub) ServeTopic(c *gin.Context) {
	topic := c.Param("topic")
	if !topics[topic] {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "unknown topic"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{
		Hub:   h,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Topic: topic,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
