package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	sendBufferSize = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are checked by middleware before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HubConfig limits inbound traffic per connection.
type HubConfig struct {
	MessagesPerSecond int
	Burst             int
}

// Client is one WebSocket connection to a table. room is nil for
// spectators of a table hosted by another process.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID game.PlayerID
	tableID  string
	room     *game.Room
	send     chan []byte
	limiter  *rate.Limiter

	mu     sync.Mutex
	closed bool
}

func (c *Client) key() string {
	return c.tableID + "/" + string(c.playerID)
}

// closeSend closes the send channel once. Later sends are dropped.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// trySend queues data without blocking. It reports false when the buffer is
// full or the connection is closing.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks connections per table and forwards room snapshots to them.
type Hub struct {
	manager *game.GameManager
	signer  *auth.SeatSigner
	config  HubConfig

	clients    map[string]*Client            // table/player -> Client
	tables     map[string]map[string]*Client // tableID -> key -> Client
	unsub      map[string]func()             // tableID -> room listener removal
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(manager *game.GameManager, signer *auth.SeatSigner, cfg HubConfig) *Hub {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.MessagesPerSecond
	}
	return &Hub{
		manager:    manager,
		signer:     signer,
		config:     cfg,
		clients:    make(map[string]*Client),
		tables:     make(map[string]map[string]*Client),
		unsub:      make(map[string]func()),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then closes every
// connection. Run must only be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.closeAll()
			log.Println("[WS] Hub stopped")
			return
		}
	}
}

// closeAll drops every connection and room subscription.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	for tableID, unsub := range h.unsub {
		unsub()
		delete(h.unsub, tableID)
	}
	h.clients = make(map[string]*Client)
	h.tables = make(map[string]map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}
}

// Register hands a new connection to the hub. It reports false once the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if old, exists := h.clients[client.key()]; exists {
		log.Printf("[WS] Player %s reconnecting to table %s - closing old connection", client.playerID, client.tableID)
		old.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
			time.Now().Add(time.Second))
		old.conn.Close()
		old.closeSend()
		delete(h.tables[old.tableID], old.key())
	}
	h.clients[client.key()] = client
	if _, exists := h.tables[client.tableID]; !exists {
		h.tables[client.tableID] = make(map[string]*Client)
	}
	h.tables[client.tableID][client.key()] = client
	if _, subscribed := h.unsub[client.tableID]; !subscribed && client.room != nil {
		tableID := client.tableID
		h.unsub[tableID] = client.room.Subscribe(func(s game.Snapshot) {
			h.broadcastSnapshot(tableID, s)
		})
	}
	h.mu.Unlock()

	metrics.WSConnected()
	log.Printf("[WS] Player %s connected to table %s", client.playerID, client.tableID)

	if client.room != nil {
		client.room.Connect(client.playerID)
		client.sendJSON(stateMessage(client.room.Snapshot()))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[client.key()]; ok && cur == client {
		delete(h.clients, client.key())
	}
	if table, exists := h.tables[client.tableID]; exists {
		if cur, ok := table[client.key()]; ok && cur == client {
			delete(table, client.key())
		}
		if len(table) == 0 {
			delete(h.tables, client.tableID)
			if unsub, ok := h.unsub[client.tableID]; ok {
				unsub()
				delete(h.unsub, client.tableID)
			}
		}
	}
	h.mu.Unlock()

	client.closeSend()
	metrics.WSDisconnected()
	log.Printf("[WS] Player %s disconnected from table %s", client.playerID, client.tableID)

	if client.room != nil {
		client.room.Disconnect(client.playerID)
	}
}

// StateMessage is the outbound snapshot envelope.
type StateMessage struct {
	Type string `json:"type"`
	game.Snapshot
}

func stateMessage(s game.Snapshot) StateMessage {
	return StateMessage{Type: "state", Snapshot: s}
}

func (h *Hub) broadcastSnapshot(tableID string, s game.Snapshot) {
	data, err := json.Marshal(stateMessage(s))
	if err != nil {
		log.Printf("[WS] Error marshaling snapshot for table %s: %v", tableID, err)
		return
	}
	h.BroadcastToTable(tableID, data)
}

// BroadcastToTable sends data to every connection at a table without blocking.
func (h *Hub) BroadcastToTable(tableID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.tables[tableID] {
		if !client.trySend(data) {
			log.Printf("[WS] Send buffer full or closed for player %s at table %s, dropping message", client.playerID, tableID)
		}
	}
}

// ClientCount returns the number of connections at a table.
func (h *Hub) ClientCount(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables[tableID])
}

// WSMessage is the inbound envelope.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
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
				log.Printf("[WS] Write error for player %s: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for player %s: %v", c.playerID, err)
				return
			}
		}
	}
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] Error marshaling message for player %s: %v", c.playerID, err)
		return
	}
	if !c.trySend(data) {
		log.Printf("[WS] Send buffer full or closed for player %s, dropping message", c.playerID)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
