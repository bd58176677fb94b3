package game

import "testing"

func TestEventIDsStartAtOneAndIncrease(t *testing.T) {
	var l EventLog
	l.emit(EventShot, "", 0, "a")
	l.emit(EventBallHit, "red", 0, "")
	l.clear()
	l.emit(EventPotted, "red", 3, "")

	batch := l.Batch()
	if len(batch) != 1 {
		t.Fatalf("Expected only the current batch, got %d events", len(batch))
	}
	if batch[0].ID != 3 {
		t.Errorf("Expected id 3, got %d", batch[0].ID)
	}
	if l.LastID() != 3 {
		t.Errorf("Expected last id 3, got %d", l.LastID())
	}
}

func TestBatchIsACopy(t *testing.T) {
	var l EventLog
	l.emit(EventShot, "", 0, "a")
	batch := l.Batch()
	l.clear()
	l.emit(EventFoul, "", 0, "a")

	if batch[0].Kind != EventShot {
		t.Errorf("Expected earlier batch to be unaffected, got %s", batch[0].Kind)
	}
}

func TestCursorDropsRedelivery(t *testing.T) {
	var c EventCursor
	first := []Event{{ID: 1, Kind: EventShot}, {ID: 2, Kind: EventBallHit}}

	if got := c.Accept(first); len(got) != 2 {
		t.Fatalf("Expected 2 fresh events, got %d", len(got))
	}
	if got := c.Accept(first); len(got) != 0 {
		t.Errorf("Expected re-delivered events to be dropped, got %d", len(got))
	}

	mixed := []Event{{ID: 2, Kind: EventBallHit}, {ID: 3, Kind: EventPotted}}
	got := c.Accept(mixed)
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("Expected only event 3, got %v", got)
	}
	if c.LastSeen() != 3 {
		t.Errorf("Expected cursor at 3, got %d", c.LastSeen())
	}

	c.Reset()
	if got := c.Accept([]Event{{ID: 1}}); len(got) != 1 {
		t.Error("Expected a reset cursor to accept id 1 again")
	}
}
