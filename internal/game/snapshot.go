package game

import "github.com/playmatatu/billiards/internal/physics"

// BallView is a ball as presented to clients.
type BallView struct {
	ID       physics.BodyID `json:"id"`
	Class    BallKind       `json:"class"`
	Number   int            `json:"number,omitempty"`
	Position physics.Vec2   `json:"position"`
}

// Snapshot is the read-only projection of a table pushed every tick.
type Snapshot struct {
	TableID        string              `json:"table_id,omitempty"`
	Tick           int64               `json:"tick"`
	StartGame      bool                `json:"startGame"`
	RackStyle      RackStyle           `json:"rack_style"`
	Balls          []BallView          `json:"balls"`
	Players        []PlayerID          `json:"players"`
	WhoseTurn      PlayerID            `json:"whose_turn"`
	Colors         map[PlayerID]Group  `json:"colors"`
	ShotsRemaining int                 `json:"shots_remaining"`
	Events         []Event             `json:"events"`
	AtRest         bool                `json:"at_rest"`
	Potted         []Ball              `json:"potted"`
	GameOver       bool                `json:"game_over"`
	Outcome        map[PlayerID]Result `json:"outcome,omitempty"`
	Thinking       bool                `json:"thinking"`
	Candidate      int                 `json:"candidate,omitempty"`
	Candidates     int                 `json:"candidates,omitempty"`
}

// TakeSnapshot copies everything a client needs out of g.
func TakeSnapshot(g *GameState) Snapshot {
	s := Snapshot{
		Tick:           g.Ticks,
		StartGame:      g.StartGame,
		RackStyle:      g.RackStyle,
		Players:        append([]PlayerID(nil), g.Players...),
		WhoseTurn:      g.Turn,
		Colors:         make(map[PlayerID]Group, len(g.Colors)),
		ShotsRemaining: g.ShotsRemaining,
		Events:         g.Events.Batch(),
		AtRest:         g.World.AtRest(),
		Potted:         append([]Ball(nil), g.PottedAll...),
		GameOver:       g.GameOver,
	}
	for _, b := range g.World.DynamicBodies() {
		ball := ballFromTag(b.Tag)
		s.Balls = append(s.Balls, BallView{ID: b.ID, Class: ball.Kind, Number: ball.Number, Position: b.Center})
	}
	for p, grp := range g.Colors {
		s.Colors[p] = grp
	}
	if g.Outcome != nil {
		s.Outcome = make(map[PlayerID]Result, len(g.Outcome))
		for p, r := range g.Outcome {
			s.Outcome[p] = r
		}
	}
	if g.Turn == ComputerID && !g.ShotTaken && !g.GameOver {
		s.Thinking = true
		s.Candidate, s.Candidates = g.Search.Progress(g.AI)
	}
	return s
}
