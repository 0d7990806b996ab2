package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Upgrader is the shared WebSocket upgrader. Auth happens before upgrade,
// and the gateway is same-origin behind its own cookie, so origin checks
// are left permissive.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents one WebSocket connection attached to a session.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Send queues a message for delivery. A client that cannot drain its queue
// is closed rather than allowed to stall the producing session.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.closeLocked()
	}
}

// SendMessage encodes and queues a protocol message.
func (c *Client) SendMessage(msg *Message) {
	data, err := msg.Encode()
	if err != nil {
		return
	}
	c.Send(data)
}

// Outbound exposes the queued outbound frames. The write pump consumes
// this; tests read it directly.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// Close closes the client's send queue.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump pumps queued messages to the WebSocket connection, each in its
// own text frame, and keeps the connection alive with pings. Runs until the
// queue closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads messages from the connection and hands them to onMessage.
// Runs until the peer disconnects or errors, then calls onClose.
func (c *Client) ReadPump(onMessage func(data []byte), onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		onMessage(data)
	}
}

// Hub is the attached-client set of one session.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	// onEmpty fires after the last client detaches.
	onEmpty func()
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// SetOnEmpty sets the callback invoked when the client set becomes empty.
func (h *Hub) SetOnEmpty(callback func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEmpty = callback
}

// Register adds a client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a client and closes it. Fires the onEmpty callback
// when no clients remain.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	remaining := len(h.clients)
	onEmpty := h.onEmpty
	h.mu.Unlock()

	client.Close()

	if remaining == 0 && onEmpty != nil {
		onEmpty()
	}
}

// Broadcast queues data on every attached client. Iteration happens over a
// snapshot so a client closing mid-broadcast cannot corrupt the set.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.mu.RUnlock()

	for _, client := range snapshot {
		client.Send(data)
	}
}

// BroadcastMessage encodes and broadcasts a protocol message.
func (h *Hub) BroadcastMessage(msg *Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes every client and empties the set.
func (h *Hub) Close() {
	h.mu.Lock()
	snapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		snapshot = append(snapshot, client)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range snapshot {
		client.Close()
	}
}
