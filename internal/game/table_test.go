package game

import (
	"testing"

	"github.com/playmatatu/billiards/internal/physics"
)

func TestBuildTable(t *testing.T) {
	w := physics.NewWorld()
	BuildTable(w)

	cushions := 0
	for _, b := range w.StaticBodies() {
		if !b.Sensor {
			cushions++
		}
	}
	if cushions != 6 {
		t.Errorf("Expected 6 cushions, got %d", cushions)
	}
	if n := len(w.Sensors()); n != 6 {
		t.Errorf("Expected 6 pockets, got %d", n)
	}
	if n := len(w.DynamicBodies()); n != 0 {
		t.Errorf("Expected no balls, got %d", n)
	}
}

func TestBuildRackRedYellow(t *testing.T) {
	w := physics.NewWorld()
	cueID := BuildRack(w, RackRedYellow)

	balls := w.DynamicBodies()
	if len(balls) != 16 {
		t.Fatalf("Expected 16 balls, got %d", len(balls))
	}

	cue, ok := w.Body(cueID)
	if !ok {
		t.Fatal("Expected cue ball to exist")
	}
	if ballFromTag(cue.Tag).Kind != BallCue {
		t.Errorf("Expected cue ball class, got %s", ballFromTag(cue.Tag).Kind)
	}
	if cue.Center != BreakPosition {
		t.Errorf("Expected cue ball at %v, got %v", BreakPosition, cue.Center)
	}

	counts := map[BallKind]int{}
	for _, b := range balls {
		ball := ballFromTag(b.Tag)
		counts[ball.Kind]++
		if ball.Number != 0 {
			t.Errorf("Expected unnumbered balls, got %d", ball.Number)
		}
	}
	if counts[BallRed] != 7 || counts[BallYellow] != 7 || counts[BallBlack] != 1 || counts[BallCue] != 1 {
		t.Errorf("Unexpected rack composition: %v", counts)
	}
}

func TestBlackSitsInTheMiddleOfTheRack(t *testing.T) {
	w := physics.NewWorld()
	BuildRack(w, RackRedYellow)

	// cue ball first, then the rack front row first
	black := w.DynamicBodies()[1+4]
	if ballFromTag(black.Tag).Kind != BallBlack {
		t.Fatalf("Expected black at rack position 4, got %s", ballFromTag(black.Tag).Kind)
	}
	if black.Center.Y != TableHeight/2 {
		t.Errorf("Expected black on the center line, got y=%v", black.Center.Y)
	}
}

func TestBuildRackNumbered(t *testing.T) {
	w := physics.NewWorld()
	BuildRack(w, RackNumbered)

	seen := map[int]BallKind{}
	for _, b := range w.DynamicBodies() {
		ball := ballFromTag(b.Tag)
		if ball.Kind == BallCue {
			continue
		}
		if _, dup := seen[ball.Number]; dup {
			t.Errorf("Duplicate ball number %d", ball.Number)
		}
		seen[ball.Number] = ball.Kind
	}

	for n := 1; n <= 15; n++ {
		kind, ok := seen[n]
		if !ok {
			t.Errorf("Missing ball %d", n)
			continue
		}
		want := BallYellow
		switch {
		case n < 8:
			want = BallRed
		case n == 8:
			want = BallBlack
		}
		if kind != want {
			t.Errorf("Ball %d: expected %s, got %s", n, want, kind)
		}
	}
}

func TestParseRackStyle(t *testing.T) {
	if ParseRackStyle("numbered") != RackNumbered {
		t.Error("Expected numbered rack")
	}
	if ParseRackStyle("bogus") != RackRedYellow {
		t.Error("Expected unknown styles to fall back to red_yellow")
	}
}
