package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/metrics"
	"github.com/playmatatu/billiards/internal/physics"
	"golang.org/x/time/rate"
)

// ShotData is the payload of a "shot" message: the drag vector.
type ShotData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandleWebSocket upgrades a seated player's connection to a table.
func HandleWebSocket(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		claims, err := h.signer.Verify(token, tableID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid seat token"})
			return
		}
		playerID := game.PlayerID(claims.PlayerID)

		room, err := h.manager.GetRoom(tableID)
		switch {
		case err == nil:
			if !room.HasSeat(playerID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "not seated at this table"})
				return
			}
		case errors.Is(err, game.ErrRoomNotFound):
			// Hosted elsewhere: allow read-only access if the table is known.
			if _, ok, _ := h.manager.Store().LoadSnapshot(c.Request.Context(), tableID); !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
				return
			}
			room = nil
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:      h,
			conn:     conn,
			playerID: playerID,
			tableID:  tableID,
			room:     room,
			send:     make(chan []byte, sendBufferSize),
			limiter:  rate.NewLimiter(rate.Limit(h.config.MessagesPerSecond), h.config.Burst),
		}

		if !h.Register(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads inbound messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for player %s: %v", c.playerID, err)
			}
			break
		}

		if !c.limiter.Allow() {
			metrics.RecordDropped("rate_limit")
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			metrics.RecordDropped("invalid")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one inbound message.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "shot":
		if c.room == nil {
			c.sendError("Table is hosted on another server")
			return
		}
		var data ShotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			metrics.RecordDropped("invalid")
			c.sendError("Invalid shot data")
			return
		}
		if math.IsNaN(data.X) || math.IsNaN(data.Y) {
			metrics.RecordDropped("invalid")
			return
		}
		// Out-of-turn and mid-motion shots are dropped by the rule engine.
		c.room.Submit(game.Action{Kind: game.ActionShot, Player: c.playerID, Dir: physics.NewVec2(data.X, data.Y)})

	case "get_state":
		if c.room != nil {
			c.sendJSON(stateMessage(c.room.Snapshot()))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		snap, ok, err := c.hub.manager.Store().LoadSnapshot(ctx, c.tableID)
		if err != nil || !ok {
			c.sendError("State unavailable")
			return
		}
		c.sendJSON(stateMessage(snap))

	default:
		c.sendError("Unknown message type")
	}
}
