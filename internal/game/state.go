package game

import (
	"math/rand"
	"time"

	"github.com/playmatatu/billiards/internal/physics"
)

// Result is a human player's final standing.
type Result string

const (
	ResultWon  Result = "WON"
	ResultLost Result = "LOST"
)

// MaxHumans is the number of human seats at a table.
const MaxHumans = 2

// Options configure a new game.
type Options struct {
	RackStyle RackStyle
	AI        AIConfig
	// Seed seeds the computer's random source; zero picks a time-based seed.
	Seed int64
}

// GameState is the authoritative state of one table. It is not safe for
// concurrent use; a Room serializes access to it.
type GameState struct {
	World     *physics.World
	CueBallID physics.BodyID
	RackStyle RackStyle

	Players        []PlayerID
	Turn           PlayerID
	Colors         map[PlayerID]Group
	ShotsRemaining int
	ShotTaken      bool
	ShotNumber     int
	LastShotDir    physics.Vec2

	Ticks     int64
	StartGame bool

	// Potted holds the balls pocketed by the shot in progress.
	Potted []Ball
	// PottedAll holds every object ball pocketed this game, in order.
	PottedAll []Ball

	GameOver bool
	Outcome  map[PlayerID]Result

	Events EventLog
	Search ShotSearch
	AI     AIConfig

	firstHit    BallKind
	hasFirstHit bool

	// The shooter's group as it stood when the shot was taken.
	shotGroup     Group
	shotHasGroup  bool
	shotGroupLeft int

	// Groups of humans who left mid-game, restored when they rejoin.
	departed map[PlayerID]Group
	// The human whose turn the computer took over when they left.
	coveringFor PlayerID

	rng *rand.Rand
}

// NewGame racks a table for the given human players. With no humans the
// computer holds the first turn.
func NewGame(players []PlayerID, opts Options) *GameState {
	if opts.RackStyle == "" {
		opts.RackStyle = RackRedYellow
	}
	if opts.AI.Candidates == 0 {
		opts.AI = DefaultAIConfig()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := physics.NewWorld()
	cueID := BuildRack(w, opts.RackStyle)
	BuildTable(w)

	g := &GameState{
		World:          w,
		CueBallID:      cueID,
		RackStyle:      opts.RackStyle,
		Colors:         make(map[PlayerID]Group),
		departed:       make(map[PlayerID]Group),
		ShotsRemaining: 1,
		StartGame:      true,
		AI:             opts.AI,
		rng:            rand.New(rand.NewSource(seed)),
	}
	for _, p := range players {
		if p == ComputerID || len(g.Players) == MaxHumans {
			continue
		}
		g.Players = append(g.Players, p)
	}
	if len(g.Players) > 0 {
		g.Turn = g.Players[0]
	} else {
		g.Turn = ComputerID
	}
	g.Search.Reset()
	return g
}

// ColorOf returns the group assigned to p, if any.
func (g *GameState) ColorOf(p PlayerID) (Group, bool) {
	grp, ok := g.Colors[p]
	return grp, ok
}

// Opponent returns who plays against p: the other human when seated, else
// the computer. The computer's opponent is the first human.
func (g *GameState) Opponent(p PlayerID) PlayerID {
	if p == ComputerID {
		if len(g.Players) > 0 {
			return g.Players[0]
		}
		return ComputerID
	}
	for _, other := range g.Players {
		if other != p {
			return other
		}
	}
	return ComputerID
}

// IsSeated reports whether p is one of the human players.
func (g *GameState) IsSeated(p PlayerID) bool {
	for _, s := range g.Players {
		if s == p {
			return true
		}
	}
	return false
}

// FirstHit returns the class of the first ball the cue ball touched this shot.
func (g *GameState) FirstHit() (BallKind, bool) {
	return g.firstHit, g.hasFirstHit
}

// BallsLeft counts the balls of kind k still on the table.
func (g *GameState) BallsLeft(k BallKind) int {
	return countBalls(g.World, k)
}

func countBalls(w *physics.World, k BallKind) int {
	n := 0
	for _, b := range w.DynamicBodies() {
		if ballFromTag(b.Tag).Kind == k {
			n++
		}
	}
	return n
}

func (g *GameState) assignGroups(shooter PlayerID, grp Group) {
	if opp := g.Opponent(shooter); opp != shooter {
		g.Colors[opp] = grp.Other()
	}
	g.Colors[shooter] = grp
}
