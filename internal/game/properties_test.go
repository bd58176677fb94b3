package game

import (
	"math"
	"testing"

	"github.com/playmatatu/billiards/internal/physics"
	"pgregory.net/rapid"
)

const objectBalls = 15

// checkTable fails t unless the resting table is consistent.
func checkTable(t *rapid.T, g *GameState) {
	if n := countBalls(g.World, BallCue); n != 1 {
		t.Fatalf("expected one cue ball, got %d", n)
	}
	if _, ok := g.World.Body(g.CueBallID); !ok {
		t.Fatalf("cue ball id %d not on the table", g.CueBallID)
	}

	onTable := len(g.World.DynamicBodies()) - 1
	if onTable+len(g.PottedAll) != objectBalls {
		t.Fatalf("%d balls on table and %d potted", onTable, len(g.PottedAll))
	}

	for _, b := range g.World.DynamicBodies() {
		if !b.Center.IsFinite() || !b.Velocity.IsFinite() {
			t.Fatalf("ball %d has non-finite state", b.ID)
		}
	}

	if len(g.Colors) > 0 {
		a, okA := g.Colors[alice]
		b, okB := g.Colors[bob]
		if !okA || !okB || a == b {
			t.Fatalf("groups not complementary: %v", g.Colors)
		}
	}

	if !g.GameOver {
		if g.ShotsRemaining < 1 || g.ShotsRemaining > FoulShots {
			t.Fatalf("shots remaining %d out of range", g.ShotsRemaining)
		}
		if g.Turn != alice && g.Turn != bob {
			t.Fatalf("turn held by %q", g.Turn)
		}
	}
}

func TestRandomPlayKeepsTableConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGame([]PlayerID{alice, bob}, Options{
			RackStyle: RackNumbered,
			Seed:      rapid.Int64Range(1, math.MaxInt64).Draw(t, "seed"),
		})

		var lastID int64
		shots := rapid.IntRange(1, 6).Draw(t, "shots")
		for i := 0; i < shots && !g.GameOver; i++ {
			angle := rapid.Float64Range(0, 2*math.Pi).Draw(t, "angle")
			power := rapid.Float64Range(20, 250).Draw(t, "power")
			dir := physics.FromAngle(angle, power)

			Tick(g, Action{Kind: ActionShot, Player: g.Turn, Dir: dir})
			for tick := 0; tick < 3000 && g.ShotTaken; tick++ {
				for _, e := range g.Events.Batch() {
					if e.ID <= lastID {
						t.Fatalf("event id %d not above %d", e.ID, lastID)
					}
					lastID = e.ID
				}
				Tick(g)
			}
			if g.ShotTaken {
				t.Fatalf("shot %d never came to rest", i)
			}
			checkTable(t, g)
		}
	})
}

func TestCursorNeverReplays(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var log EventLog
		var cursor EventCursor
		var delivered []Event

		batches := rapid.IntRange(1, 20).Draw(t, "batches")
		for i := 0; i < batches; i++ {
			log.clear()
			for n := rapid.IntRange(0, 4).Draw(t, "events"); n > 0; n-- {
				log.emit(EventBallHit, "red", 0, "")
			}
			batch := log.Batch()
			// a consumer may see the same batch more than once
			for r := rapid.IntRange(1, 3).Draw(t, "deliveries"); r > 0; r-- {
				delivered = append(delivered, cursor.Accept(batch)...)
			}
		}

		if int64(len(delivered)) != log.LastID() {
			t.Fatalf("delivered %d events, emitted %d", len(delivered), log.LastID())
		}
		for i, e := range delivered {
			if e.ID != int64(i+1) {
				t.Fatalf("event %d has id %d", i, e.ID)
			}
		}
	})
}
