package game

import (
	"testing"

	"github.com/playmatatu/billiards/internal/physics"
)

func setupComputerGame(t *testing.T, cfg AIConfig) *GameState {
	t.Helper()
	return NewGame(nil, Options{RackStyle: RackRedYellow, AI: cfg, Seed: 7})
}

func TestSearchFindsStraightPot(t *testing.T) {
	cfg := DefaultAIConfig()
	cfg.SimTicksPerTick = 1 << 20
	g := setupComputerGame(t, cfg)
	g.Colors[ComputerID] = GroupRed

	clearTable(g)
	moveBall(t, g, g.CueBallID, TableWidth*0.498, 70)
	// straight below the top middle pocket
	placeBall(g, BallRed, TableWidth*0.498, 30)

	Tick(g)

	if n := g.Search.Evaluated(); n != cfg.Candidates {
		t.Fatalf("Expected all %d candidates rated in one tick, got %d", cfg.Candidates, n)
	}
	if rating, _, _ := g.Search.Best(); rating < ratingPot {
		t.Fatalf("Expected a potting candidate, best rating %d", rating)
	}
	if g.ShotTaken {
		t.Error("Expected the computer to think before shooting")
	}
}

func TestSearchLeavesRealTableUntouched(t *testing.T) {
	cfg := DefaultAIConfig()
	cfg.Candidates = 12
	cfg.SimTicksPerTick = 1 << 20
	g := setupComputerGame(t, cfg)

	before := map[physics.BodyID]physics.Vec2{}
	for _, b := range g.World.DynamicBodies() {
		before[b.ID] = b.Center
	}
	lastID := g.Events.LastID()

	Tick(g)

	for _, b := range g.World.DynamicBodies() {
		if before[b.ID] != b.Center {
			t.Errorf("Ball %d moved during the search", b.ID)
		}
	}
	if g.Events.LastID() != lastID {
		t.Error("Expected the search to emit no events")
	}
}

func TestSearchIsSpreadAcrossTicks(t *testing.T) {
	cfg := DefaultAIConfig()
	cfg.Candidates = 8
	cfg.SimTicksPerTick = 10
	g := setupComputerGame(t, cfg)

	Tick(g)
	idx, total := g.Search.Progress(g.AI)
	if idx >= total {
		t.Fatalf("Expected search to be incomplete after one tick, got %d/%d", idx, total)
	}

	snap := TakeSnapshot(g)
	if !snap.Thinking || snap.Candidates != total {
		t.Errorf("Expected thinking snapshot, got thinking=%v candidates=%d", snap.Thinking, snap.Candidates)
	}
}

func TestComputerCommitsAfterDelay(t *testing.T) {
	cfg := AIConfig{
		Candidates:      4,
		SimTicksPerTick: 1 << 20,
		MaxSimTicks:     10,
		MinPower:        60,
		MaxPower:        200,
		ThinkDelayTicks: 2,
	}
	g := setupComputerGame(t, cfg)

	// one tick to search, then the delay
	for i := 0; i < 3; i++ {
		Tick(g)
		if g.ShotTaken {
			t.Fatalf("Expected no shot on tick %d", i+1)
		}
	}
	Tick(g)
	if !g.ShotTaken {
		t.Fatal("Expected the computer to shoot once the delay passed")
	}
	if g.Events.Batch()[0].Player != ComputerID {
		t.Error("Expected the shot event to name the computer")
	}
	if g.Search.Evaluated() != 0 {
		t.Error("Expected search progress to reset after committing")
	}
}

func TestHumanTurnDoesNotSearch(t *testing.T) {
	g := setupGame(t, alice)

	Tick(g)
	if g.Search.Evaluated() != 0 {
		t.Error("Expected no search on a human turn")
	}
}

func TestAIConfigFor(t *testing.T) {
	if AIConfigFor("hard").Candidates != 360 {
		t.Error("Expected hard difficulty to sweep 360 candidates")
	}
	if AIConfigFor("anything").Candidates != DefaultAIConfig().Candidates {
		t.Error("Expected unknown difficulty to use the default")
	}
}

// Candidate indexes when the search uses four candidates.
const (
	aimRight = 0
	aimDown  = 1
	aimUp    = 3
)

// setupBoard returns a computer game on an empty table with the cue ball at
// (x, y), the computer on grp and a fixed candidate power.
func setupBoard(t *testing.T, grp Group, x, y float64) *GameState {
	t.Helper()
	g := setupComputerGame(t, AIConfig{
		Candidates:      4,
		SimTicksPerTick: 1 << 20,
		MaxSimTicks:     300,
		MinPower:        100,
		MaxPower:        100,
	})
	g.Colors[ComputerID] = grp
	clearTable(g)
	moveBall(t, g, g.CueBallID, x, y)
	return g
}

// rateCandidate simulates a single candidate and returns its rating and
// whether the rating was fixed before the balls stopped.
func rateCandidate(g *GameState, index int) (rating int, decided bool) {
	s := &g.Search
	s.Reset()
	s.index = index
	s.begin(g)
	for !s.candidateDone(g.AI) {
		s.advance(g)
	}
	return s.rating, s.decided
}

func TestRatingWrongFirstBall(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 70)
	placeBall(g, BallYellow, 124.5, 40)
	placeBall(g, BallRed, 40, 110)

	rating, decided := rateCandidate(g, aimUp)
	if rating != ratingNothing || !decided {
		t.Errorf("Expected a settled 0 for hitting yellow first, got %d (decided=%v)", rating, decided)
	}
}

func TestRatingCuePotted(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 70)
	placeBall(g, BallRed, 40, 110)

	rating, decided := rateCandidate(g, aimUp)
	if rating != ratingNothing || !decided {
		t.Errorf("Expected a settled 0 for a scratch, got %d (decided=%v)", rating, decided)
	}
	if countBalls(g.World, BallCue) != 1 {
		t.Error("Expected the real table to keep its cue ball")
	}
}

func TestRatingOpponentBallPotted(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 95)
	// cue -> red -> yellow, straight up into the top middle pocket
	placeBall(g, BallRed, 124.5, 65)
	placeBall(g, BallYellow, 124.5, 30)

	rating, decided := rateCandidate(g, aimUp)
	if rating != ratingNothing || !decided {
		t.Errorf("Expected a settled 0 for potting yellow, got %d (decided=%v)", rating, decided)
	}
}

func TestRatingEarlyBlack(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 95)
	// cue -> red -> black; the red stays on the table
	placeBall(g, BallRed, 124.5, 65)
	placeBall(g, BallBlack, 124.5, 30)

	rating, decided := rateCandidate(g, aimUp)
	if rating != ratingNothing || !decided {
		t.Errorf("Expected a settled 0 for an early black, got %d (decided=%v)", rating, decided)
	}
}

func TestRatingOwnBallContactOnly(t *testing.T) {
	g := setupBoard(t, GroupRed, 100, 70)
	// a red on the centre line; aiming right sends it into the side cushion
	placeBall(g, BallRed, 150, 70)

	rating, decided := rateCandidate(g, aimRight)
	if rating != ratingContact || decided {
		t.Errorf("Expected an unsettled 1 for plain contact, got %d (decided=%v)", rating, decided)
	}
}

func TestRatingLegalBlackWins(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 70)
	placeBall(g, BallBlack, 124.5, 30)

	rating, decided := rateCandidate(g, aimUp)
	if rating != ratingWin || !decided {
		t.Fatalf("Expected a settled 3 for the black, got %d (decided=%v)", rating, decided)
	}

	g.Search.Reset()
	Tick(g)
	best, angle, _ := g.Search.Best()
	if best != ratingWin {
		t.Fatalf("Expected the sweep to find the winning shot, best %d", best)
	}
	if dir := physics.FromAngle(angle, 1); dir.Y > -0.99 {
		t.Errorf("Expected the winning shot to aim straight up, got angle %v", angle)
	}
}

func TestRatingDownwardScratch(t *testing.T) {
	g := setupBoard(t, GroupRed, 124.5, 70)
	placeBall(g, BallRed, 40, 110)

	// Straight down drops the cue into the bottom middle pocket.
	if rating, _ := rateCandidate(g, aimDown); rating != ratingNothing {
		t.Errorf("Expected 0 for a downward scratch, got %d", rating)
	}
}
