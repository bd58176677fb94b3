package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/billiards/internal/metrics"
)

var (
	ErrRoomNotFound = errors.New("table not found")
	ErrRoomFull     = errors.New("table is full")
)

const (
	actionQueueSize = 64
	persistTimeout  = 5 * time.Second
)

// Listener receives every snapshot a room produces. It is called from the
// room's tick goroutine and must not block.
type Listener func(Snapshot)

// RoomConfig holds the per-table settings that come from configuration.
type RoomConfig struct {
	TickRate           int
	SnapshotEveryTicks int
}

// Room runs one table: it owns the GameState and drives Tick at a fixed rate.
// Transport goroutines interact with it only through Submit and the read-only
// snapshot accessors.
type Room struct {
	ID         string
	Difficulty string
	CreatedAt  time.Time

	g       *GameState
	store   *Store
	origin  string
	cfg     RoomConfig
	actions chan Action

	mu            sync.RWMutex
	latest        Snapshot
	listeners     map[int]Listener
	nextListener  int
	seats         []PlayerID
	connected     map[PlayerID]int
	idleSince     time.Time
	resultWritten bool

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

func newRoom(id, difficulty, origin string, g *GameState, store *Store, cfg RoomConfig) *Room {
	if cfg.TickRate <= 0 {
		cfg.TickRate = TickRate
	}
	if cfg.SnapshotEveryTicks <= 0 {
		cfg.SnapshotEveryTicks = cfg.TickRate
	}
	now := time.Now()
	r := &Room{
		ID:         id,
		Difficulty: difficulty,
		CreatedAt:  now,
		g:          g,
		store:      store,
		origin:     origin,
		cfg:        cfg,
		actions:    make(chan Action, actionQueueSize),
		listeners:  make(map[int]Listener),
		seats:      append([]PlayerID(nil), g.Players...),
		connected:  make(map[PlayerID]int),
		idleSince:  now,
	}
	r.latest = TakeSnapshot(g)
	r.latest.TableID = id
	return r
}

// Start launches the tick loop. Calling it on a running room does nothing.
func (r *Room) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopChan = make(chan struct{})
	r.done = make(chan struct{})
	r.ticker = time.NewTicker(time.Second / time.Duration(r.cfg.TickRate))
	ticker, stop, done := r.ticker, r.stopChan, r.done
	r.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				r.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("[ROOM] Table %s started at %d ticks/s", r.ID, r.cfg.TickRate)
}

// Stop halts the tick loop and waits for the current tick to finish.
func (r *Room) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.ticker.Stop()
	close(r.stopChan)
	done := r.done
	r.mu.Unlock()

	<-done
	log.Printf("[ROOM] Table %s stopped", r.ID)
}

// Submit queues an action for the next tick. A full queue drops it.
func (r *Room) Submit(a Action) bool {
	select {
	case r.actions <- a:
		return true
	default:
		log.Printf("[ROOM] Table %s action queue full, dropping %s from %s", r.ID, a.Kind, a.Player)
		return false
	}
}

func (r *Room) drain() []Action {
	var out []Action
	for {
		select {
		case a := <-r.actions:
			out = append(out, a)
		default:
			return out
		}
	}
}

// tick advances the table once and fans the result out.
func (r *Room) tick() {
	start := time.Now()
	g := r.g

	Tick(g, r.drain()...)

	snap := TakeSnapshot(g)
	snap.TableID = r.ID

	for _, e := range snap.Events {
		switch e.Kind {
		case EventShot:
			metrics.RecordShot(e.Player == ComputerID)
			if e.Player == ComputerID {
				metrics.AddCandidates(g.AI.Candidates)
			}
			player, number, dir := e.Player, g.ShotNumber, g.LastShotDir
			r.persist(func(ctx context.Context) {
				r.store.RecordShot(ctx, r.ID, player, number, dir)
			})
		case EventFoul:
			metrics.RecordFoul()
		}
	}

	r.mu.Lock()
	r.latest = snap
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	finishedNow := g.GameOver && !r.resultWritten
	if finishedNow {
		r.resultWritten = true
	}
	r.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}

	if len(snap.Events) > 0 {
		events := snap.Events
		r.persist(func(ctx context.Context) {
			if err := r.store.PublishEvents(ctx, r.origin, r.ID, events); err != nil {
				log.Printf("[REDIS] Failed to publish events for table %s: %v", r.ID, err)
			}
		})
	}
	if finishedNow || g.Ticks%int64(r.cfg.SnapshotEveryTicks) == 0 {
		r.persist(func(ctx context.Context) {
			if err := r.store.SaveSnapshot(ctx, snap); err != nil {
				log.Printf("[REDIS] Failed to save snapshot for table %s: %v", r.ID, err)
			}
		})
	}
	if finishedNow {
		metrics.RecordGameFinished()
		outcome := snap.Outcome
		r.persist(func(ctx context.Context) {
			r.store.RecordResult(ctx, r.ID, outcome)
		})
		log.Printf("[ROOM] Table %s finished: %v", r.ID, outcome)
	}

	metrics.RecordTick(time.Since(start))
}

// persist runs a best-effort write off the tick goroutine.
func (r *Room) persist(fn func(ctx context.Context)) {
	if r.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Snapshot returns the state produced by the latest tick.
func (r *Room) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Subscribe registers l and returns a function that removes it.
func (r *Room) Subscribe(l Listener) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = l
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// ClaimSeat reserves the next free human seat.
func (r *Room) ClaimSeat(id PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seats) >= MaxHumans {
		return ErrRoomFull
	}
	r.seats = append(r.seats, id)
	return nil
}

// HasSeat reports whether id was issued a seat at this table.
func (r *Room) HasSeat(id PlayerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s == id {
			return true
		}
	}
	return false
}

// Connect records an open connection for a seated player. The first
// connection puts the player at the table.
func (r *Room) Connect(id PlayerID) {
	r.mu.Lock()
	r.connected[id]++
	first := r.connected[id] == 1
	r.mu.Unlock()
	if first {
		r.Submit(Action{Kind: ActionJoin, Player: id})
	}
}

// Disconnect records a closed connection. When the player's last
// connection goes the computer takes over their seat.
func (r *Room) Disconnect(id PlayerID) {
	r.mu.Lock()
	r.connected[id]--
	last := r.connected[id] <= 0
	if last {
		delete(r.connected, id)
		if len(r.connected) == 0 {
			r.idleSince = time.Now()
		}
	}
	r.mu.Unlock()
	if last {
		r.Submit(Action{Kind: ActionLeave, Player: id})
	}
}

// IdleFor returns how long the table has had no connected players.
func (r *Room) IdleFor(now time.Time) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.connected) > 0 {
		return 0
	}
	return now.Sub(r.idleSince)
}
