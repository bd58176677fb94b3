package game

// EventKind names what happened on the table.
type EventKind string

const (
	EventShot       EventKind = "shot"
	EventPotted     EventKind = "potted"
	EventFoul       EventKind = "foul"
	EventCushionHit EventKind = "cushion_hit"
	EventBallHit    EventKind = "ball_hit"
)

// Event is a single entry of a tick's event batch.
type Event struct {
	ID     int64     `json:"id"`
	Kind   EventKind `json:"type"`
	Data   string    `json:"data"`
	Number int       `json:"number,omitempty"`
	Player PlayerID  `json:"player,omitempty"`
}

// EventLog numbers events for the lifetime of a game and keeps only the
// current tick's batch.
type EventLog struct {
	lastID int64
	batch  []Event
}

func (l *EventLog) emit(kind EventKind, data string, number int, player PlayerID) {
	l.lastID++
	l.batch = append(l.batch, Event{ID: l.lastID, Kind: kind, Data: data, Number: number, Player: player})
}

func (l *EventLog) clear() {
	l.batch = l.batch[:0]
}

// Batch returns a copy of the events emitted during the current tick.
func (l *EventLog) Batch() []Event {
	out := make([]Event, len(l.batch))
	copy(out, l.batch)
	return out
}

// LastID returns the id of the most recent event, or 0 if none was emitted.
func (l *EventLog) LastID() int64 {
	return l.lastID
}

// EventCursor tracks the highest event id a consumer has processed.
type EventCursor struct {
	lastSeen int64
}

// Accept returns the events in batch that are newer than anything seen so far
// and advances the cursor. Re-delivered ids are dropped.
func (c *EventCursor) Accept(batch []Event) []Event {
	var fresh []Event
	for _, e := range batch {
		if e.ID <= c.lastSeen {
			continue
		}
		fresh = append(fresh, e)
		c.lastSeen = e.ID
	}
	return fresh
}

// Reset forgets every id seen. Clients do this when a new game starts.
func (c *EventCursor) Reset() {
	c.lastSeen = 0
}

func (c *EventCursor) LastSeen() int64 {
	return c.lastSeen
}
