package game

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/playmatatu/billiards/internal/metrics"
)

// ManagerConfig holds the defaults applied to new tables.
type ManagerConfig struct {
	Room         RoomConfig
	AIDifficulty string
	RackStyle    RackStyle
}

// CreateOptions override the defaults for a single table. Empty fields
// fall back to the manager's config.
type CreateOptions struct {
	Difficulty string
	RackStyle  string
	PlayerName string
}

// GameManager owns every table hosted by this process.
type GameManager struct {
	rooms  map[string]*Room
	store  *Store
	config ManagerConfig
	origin string
	mu     sync.RWMutex
}

// NewGameManager creates a manager. store may be nil for an in-memory server.
func NewGameManager(store *Store, cfg ManagerConfig) *GameManager {
	if cfg.AIDifficulty == "" {
		cfg.AIDifficulty = "normal"
	}
	if cfg.RackStyle == "" {
		cfg.RackStyle = RackRedYellow
	}
	return &GameManager{
		rooms:  make(map[string]*Room),
		store:  store,
		config: cfg,
		origin: uuid.NewString(),
	}
}

// Origin identifies this process on the shared event channel.
func (gm *GameManager) Origin() string {
	return gm.origin
}

// Store returns the persistence layer, possibly nil.
func (gm *GameManager) Store() *Store {
	return gm.store
}

// generatePlayerID builds a seat id, optionally prefixed with a display name.
func generatePlayerID(name string) PlayerID {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerID("p_" + suffix)
	}
	if len(name) > 24 {
		name = name[:24]
	}
	return PlayerID(strings.ReplaceAll(name, ":", "_") + "_" + suffix)
}

// CreateRoom racks a new table, seats its creator and starts the tick loop.
func (gm *GameManager) CreateRoom(opts CreateOptions) (*Room, PlayerID) {
	difficulty := opts.Difficulty
	if difficulty != "hard" && difficulty != "normal" {
		difficulty = gm.config.AIDifficulty
	}
	style := gm.config.RackStyle
	if opts.RackStyle != "" {
		style = ParseRackStyle(opts.RackStyle)
	}

	id := uuid.NewString()
	creator := generatePlayerID(opts.PlayerName)
	g := NewGame([]PlayerID{creator}, Options{RackStyle: style, AI: AIConfigFor(difficulty)})
	room := newRoom(id, difficulty, gm.origin, g, gm.store, gm.config.Room)

	gm.mu.Lock()
	gm.rooms[id] = room
	gm.mu.Unlock()

	metrics.RoomOpened()
	if gm.store != nil {
		go gm.store.CreateTable(context.Background(), id, style, difficulty)
	}
	room.Start()

	log.Printf("[ROOM] Table created: %s (difficulty=%s rack=%s creator=%s)", id, difficulty, style, creator)
	return room, creator
}

// ClaimSeat issues the second human seat at a table.
func (gm *GameManager) ClaimSeat(tableID, name string) (*Room, PlayerID, error) {
	room, err := gm.GetRoom(tableID)
	if err != nil {
		return nil, "", err
	}
	id := generatePlayerID(name)
	if err := room.ClaimSeat(id); err != nil {
		return nil, "", err
	}
	log.Printf("[ROOM] Seat %s claimed at table %s", id, tableID)
	return room, id, nil
}

// GetRoom looks up a table hosted by this process.
func (gm *GameManager) GetRoom(tableID string) (*Room, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	room, ok := gm.rooms[tableID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// RemoveRoom stops a table and forgets it.
func (gm *GameManager) RemoveRoom(tableID string) error {
	gm.mu.Lock()
	room, ok := gm.rooms[tableID]
	if ok {
		delete(gm.rooms, tableID)
	}
	gm.mu.Unlock()

	if !ok {
		return ErrRoomNotFound
	}
	room.Stop()
	metrics.RoomClosed()
	log.Printf("[ROOM] Table removed: %s", tableID)
	return nil
}

// Rooms returns the hosted tables in no particular order.
func (gm *GameManager) Rooms() []*Room {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	out := make([]*Room, 0, len(gm.rooms))
	for _, r := range gm.rooms {
		out = append(out, r)
	}
	return out
}

// GetActiveRoomCount returns the number of hosted tables.
func (gm *GameManager) GetActiveRoomCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.rooms)
}

// Shutdown stops every table.
func (gm *GameManager) Shutdown() {
	for _, r := range gm.Rooms() {
		gm.RemoveRoom(r.ID)
	}
}
