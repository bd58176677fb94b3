package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiards/internal/auth"
	"github.com/playmatatu/billiards/internal/game"
)

type inbound struct {
	Type    string       `json:"type"`
	TableID string       `json:"table_id"`
	Message string       `json:"message"`
	Events  []game.Event `json:"events"`
}

func setupServer(t *testing.T) (*httptest.Server, *Hub, *game.GameManager, *auth.SeatSigner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gm := game.NewGameManager(nil, game.ManagerConfig{Room: game.RoomConfig{TickRate: 30}})
	signer := auth.NewSeatSigner("test-secret", time.Hour)
	hub := NewHub(gm, signer, HubConfig{MessagesPerSecond: 100})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/tables/:id/ws", HandleWebSocket(hub))
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		srv.Close()
		gm.Shutdown()
	})
	return srv, hub, gm, signer
}

func dial(t *testing.T, srv *httptest.Server, tableID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tables/" + tableID + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(inbound) bool) inbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed before a matching message: %v", err)
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Invalid message %s: %v", data, err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestSeatedPlayerReceivesState(t *testing.T) {
	srv, _, gm, signer := setupServer(t)
	room, player := gm.CreateRoom(game.CreateOptions{})
	token, _ := signer.Issue(room.ID, string(player))

	conn := dial(t, srv, room.ID, token)
	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == "state" })
	if msg.TableID != room.ID {
		t.Errorf("Expected table %s, got %s", room.ID, msg.TableID)
	}
}

func TestShotOverWebSocket(t *testing.T) {
	srv, _, gm, signer := setupServer(t)
	room, player := gm.CreateRoom(game.CreateOptions{})
	token, _ := signer.Issue(room.ID, string(player))

	conn := dial(t, srv, room.ID, token)
	readUntil(t, conn, func(m inbound) bool { return m.Type == "state" })

	conn.WriteJSON(map[string]interface{}{"type": "shot", "data": map[string]float64{"x": 60, "y": 0}})

	readUntil(t, conn, func(m inbound) bool {
		for _, e := range m.Events {
			if e.Kind == game.EventShot && e.Player == player {
				return true
			}
		}
		return false
	})
}

func TestUnknownMessageType(t *testing.T) {
	srv, _, gm, signer := setupServer(t)
	room, player := gm.CreateRoom(game.CreateOptions{})
	token, _ := signer.Issue(room.ID, string(player))

	conn := dial(t, srv, room.ID, token)
	conn.WriteJSON(map[string]string{"type": "dance"})

	msg := readUntil(t, conn, func(m inbound) bool { return m.Type == "error" })
	if msg.Message != "Unknown message type" {
		t.Errorf("Unexpected error message %q", msg.Message)
	}
}

func TestUnseatedPlayerRejected(t *testing.T) {
	srv, _, gm, signer := setupServer(t)
	room, _ := gm.CreateRoom(game.CreateOptions{})
	token, _ := signer.Issue(room.ID, "stranger")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tables/" + room.ID + "/ws?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}
}

func TestRelayEventsSkipsOwnOrigin(t *testing.T) {
	gm := game.NewGameManager(nil, game.ManagerConfig{})
	hub := NewHub(gm, auth.NewSeatSigner("s", time.Hour), HubConfig{})

	spectator := &Client{hub: hub, playerID: "p", tableID: "remote", send: make(chan []byte, 4)}
	hub.tables["remote"] = map[string]*Client{spectator.key(): spectator}

	own, _ := json.Marshal(game.EventBatch{TableID: "remote", Origin: gm.Origin(), Events: []game.Event{{ID: 1}}})
	hub.relayEvents(string(own))
	if len(spectator.send) != 0 {
		t.Fatal("Expected own batches to be skipped")
	}

	other, _ := json.Marshal(game.EventBatch{TableID: "remote", Origin: "elsewhere", Events: []game.Event{{ID: 1, Kind: game.EventPotted}}})
	hub.relayEvents(string(other))
	if len(spectator.send) != 1 {
		t.Fatal("Expected a relayed batch")
	}

	var msg inbound
	json.Unmarshal(<-spectator.send, &msg)
	if msg.Type != "events" || len(msg.Events) != 1 || msg.Events[0].Kind != game.EventPotted {
		t.Errorf("Unexpected relay message %+v", msg)
	}

	hub.relayEvents("not json")
	if len(spectator.send) != 0 {
		t.Error("Expected invalid payloads to be ignored")
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	c := &Client{playerID: "p", tableID: "t", send: make(chan []byte, 1)}
	c.closeSend()
	c.closeSend()

	c.sendJSON(map[string]string{"type": "state"})
	if c.trySend([]byte("x")) {
		t.Error("Expected send on a closed client to be dropped")
	}
	if _, ok := <-c.send; ok {
		t.Error("Expected the send channel to be closed and empty")
	}
}

func TestBroadcastSkipsClosedClient(t *testing.T) {
	hub := NewHub(game.NewGameManager(nil, game.ManagerConfig{}), auth.NewSeatSigner("s", time.Hour), HubConfig{})
	gone := &Client{hub: hub, playerID: "a", tableID: "t", send: make(chan []byte, 1)}
	live := &Client{hub: hub, playerID: "b", tableID: "t", send: make(chan []byte, 1)}
	hub.tables["t"] = map[string]*Client{gone.key(): gone, live.key(): live}
	gone.closeSend()

	hub.BroadcastToTable("t", []byte("{}"))
	if len(live.send) != 1 {
		t.Error("Expected the open client to receive the broadcast")
	}
}

func TestHubStopsOnCancel(t *testing.T) {
	hub := NewHub(game.NewGameManager(nil, game.ManagerConfig{}), auth.NewSeatSigner("s", time.Hour), HubConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := &Client{hub: hub, playerID: "p", tableID: "t", send: make(chan []byte, 1)}
	hub.mu.Lock()
	hub.clients[c.key()] = c
	hub.mu.Unlock()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancel")
	}

	if _, ok := <-c.send; ok {
		t.Error("Expected open connections to be closed on stop")
	}
	if hub.Register(&Client{hub: hub, playerID: "q", tableID: "t", send: make(chan []byte, 1)}) {
		t.Error("Expected Register to fail once the hub has stopped")
	}
	hub.unregisterClient(c)
}
