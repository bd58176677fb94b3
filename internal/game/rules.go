package game

import (
	"math"

	"github.com/playmatatu/billiards/internal/physics"
)

// ActionKind is the type of input a room feeds into Tick.
type ActionKind string

const (
	ActionShot  ActionKind = "shot"
	ActionJoin  ActionKind = "join"
	ActionLeave ActionKind = "leave"
)

// Action is a queued player input.
type Action struct {
	Kind   ActionKind   `json:"type"`
	Player PlayerID     `json:"player"`
	Dir    physics.Vec2 `json:"dir"`
}

// Apply routes an action to the rule engine and reports whether it changed state.
func Apply(g *GameState, a Action) bool {
	switch a.Kind {
	case ActionShot:
		return Shot(g, a.Player, a.Dir)
	case ActionJoin:
		return PlayerJoined(g, a.Player)
	case ActionLeave:
		return PlayerLeft(g, a.Player)
	}
	return false
}

// Shot strikes the cue ball with dir scaled by PowerScale. Shots from anyone
// but the turn-holder, shots while balls are moving, micro-drags and shots
// after game over are ignored.
func Shot(g *GameState, player PlayerID, dir physics.Vec2) bool {
	if g.GameOver || player != g.Turn || !g.World.AtRest() {
		return false
	}
	if !dir.IsFinite() {
		return false
	}
	v := dir.Times(PowerScale)
	power := v.Magnitude()
	if power < MinPower {
		return false
	}
	if power > MaxShotPower {
		v = v.Times(MaxShotPower / power)
	}
	if !g.World.ApplyVelocity(g.CueBallID, v) {
		return false
	}

	g.Events.emit(EventShot, "", 0, player)
	g.hasFirstHit = false
	g.ShotTaken = true
	g.ShotNumber++
	g.LastShotDir = dir
	g.shotGroup, g.shotHasGroup = g.ColorOf(player)
	g.shotGroupLeft = 0
	if g.shotHasGroup {
		g.shotGroupLeft = g.BallsLeft(g.shotGroup.Kind())
	}
	return true
}

// Tick runs one logic tick: queued actions first, then physics, then shot
// resolution once the table comes to rest.
func Tick(g *GameState, actions ...Action) {
	g.Events.clear()
	g.StartGame = g.Ticks == 0
	g.Ticks++

	for _, a := range actions {
		Apply(g, a)
	}
	if g.GameOver {
		return
	}

	if !g.ShotTaken && g.World.AtRest() {
		if g.Turn == ComputerID {
			stepSearch(g)
		}
		return
	}

	r := simulateTick(g.World, g.CueBallID)
	g.harvest(r)

	if _, assigned := g.ColorOf(g.Turn); !assigned {
		for _, b := range r.potted {
			if grp, ok := groupOf(b.Kind); ok {
				g.assignGroups(g.Turn, grp)
				g.ShotsRemaining = 1
				break
			}
		}
	}

	if g.ShotTaken && g.World.AtRest() {
		resolveShot(g)
	}
}

// tickEvent is a table event observed during a simulated tick.
type tickEvent struct {
	kind EventKind
	ball Ball
}

// tickReport is what one tick of simulation produced.
type tickReport struct {
	events    []tickEvent
	cueHit    BallKind
	hasCueHit bool
	potted    []Ball
}

// simulateTick advances w by SubSteps physics steps, removes pocketed balls
// and applies table friction. The computer's look-ahead runs the same code.
func simulateTick(w *physics.World, cueID physics.BodyID) tickReport {
	var r tickReport
	for step := 0; step < SubSteps; step++ {
		for _, c := range w.Step(PhysicsFPS) {
			r.collision(w, cueID, c)
		}
		for _, pocket := range w.Sensors() {
			for _, id := range pocket.Overlaps {
				body, ok := w.Body(id)
				if !ok {
					// already dropped into another pocket
					continue
				}
				ball := ballFromTag(body.Tag)
				w.RemoveBody(id)
				r.potted = append(r.potted, ball)
				r.events = append(r.events, tickEvent{kind: EventPotted, ball: ball})
			}
		}
	}
	damp(w)
	return r
}

func (r *tickReport) collision(w *physics.World, cueID physics.BodyID, c physics.Collision) {
	a, okA := w.Body(c.BodyA)
	b, okB := w.Body(c.BodyB)
	if !okA || !okB {
		return
	}
	if a.Static {
		a, b = b, a
	}
	if b.Static {
		r.events = append(r.events, tickEvent{kind: EventCushionHit, ball: ballFromTag(a.Tag)})
		return
	}
	if b.ID == cueID {
		a, b = b, a
	}
	struck := ballFromTag(b.Tag)
	if a.ID == cueID && !r.hasCueHit {
		r.cueHit, r.hasCueHit = struck.Kind, true
	}
	r.events = append(r.events, tickEvent{kind: EventBallHit, ball: struck})
}

func damp(w *physics.World) {
	for _, b := range w.DynamicBodies() {
		v := b.Velocity.Times(Damping)
		if math.Abs(v.X) < MinVelocity {
			v.X = 0
		}
		if math.Abs(v.Y) < MinVelocity {
			v.Y = 0
		}
		b.Velocity = v
	}
}

func (g *GameState) harvest(r tickReport) {
	if r.hasCueHit && !g.hasFirstHit {
		g.firstHit, g.hasFirstHit = r.cueHit, true
	}
	for _, e := range r.events {
		g.Events.emit(e.kind, e.ball.Kind.String(), e.ball.Number, "")
	}
	for _, b := range r.potted {
		g.Potted = append(g.Potted, b)
		if b.Kind != BallCue {
			g.PottedAll = append(g.PottedAll, b)
		}
	}
}

func (g *GameState) pottedKind(k BallKind) bool {
	for _, b := range g.Potted {
		if b.Kind == k {
			return true
		}
	}
	return false
}

// resolveShot evaluates a finished shot. It runs once per shot, when the
// table has come to rest.
func resolveShot(g *GameState) {
	shooter := g.Turn
	opponent := g.Opponent(shooter)
	g.ShotsRemaining--

	if g.pottedKind(BallCue) {
		g.CueBallID = SpawnCueBall(g.World)
		if g.pottedKind(BallBlack) {
			g.finish(opponent, shooter)
		} else {
			g.foul(shooter, opponent)
		}
		g.endShot()
		return
	}

	fouled := false
	if !g.shotHasGroup {
		if g.pottedKind(BallBlack) {
			g.finish(opponent, shooter)
		} else {
			for _, b := range g.Potted {
				grp, ok := groupOf(b.Kind)
				if !ok {
					continue
				}
				if _, assigned := g.ColorOf(shooter); !assigned {
					g.assignGroups(shooter, grp)
				}
				g.ShotsRemaining = 1
				break
			}
		}
	} else {
		own := g.shotGroup
		switch {
		case g.pottedKind(BallBlack):
			if g.BallsLeft(own.Kind()) > 0 {
				g.finish(opponent, shooter)
			} else {
				g.finish(shooter, opponent)
			}
		case g.pottedKind(own.Other().Kind()):
			fouled = true
		case g.pottedKind(own.Kind()):
			g.ShotsRemaining++
		}
	}
	if g.GameOver {
		g.endShot()
		return
	}

	if !g.hasFirstHit {
		fouled = true
	} else if g.shotHasGroup && g.firstHit != g.shotGroup.Kind() {
		if !(g.firstHit == BallBlack && g.shotGroupLeft == 0) {
			fouled = true
		}
	}
	if fouled {
		g.foul(shooter, opponent)
	}

	g.endShot()
	if g.ShotsRemaining <= 0 {
		g.Turn = opponent
		g.ShotsRemaining = 1
	}
	if g.Turn == ComputerID {
		g.Search.Reset()
	}
}

// foul passes the turn and awards the opponent FoulShots. A shot fouls at
// most once however many conditions it breaks.
func (g *GameState) foul(shooter, opponent PlayerID) {
	g.Turn = opponent
	g.ShotsRemaining = FoulShots
	g.Events.emit(EventFoul, "", 0, shooter)
	if g.Turn == ComputerID {
		g.Search.Reset()
	}
}

func (g *GameState) endShot() {
	g.Potted = nil
	g.hasFirstHit = false
	g.ShotTaken = false
	g.coveringFor = ""
}

// finish records the outcome once. The computer never appears in it.
func (g *GameState) finish(winner, loser PlayerID) {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Outcome = make(map[PlayerID]Result)
	if loser != ComputerID {
		g.Outcome[loser] = ResultLost
	}
	if winner != ComputerID {
		g.Outcome[winner] = ResultWon
	}
}

// PlayerJoined seats a human. When the newcomer completes the table the
// computer stands down and the newcomer takes its group and, if it held it,
// the turn. Otherwise the computer stays on as the opponent and keeps its
// group; the newcomer gets their old group back, or the complement of the
// computer's. A returning player whose turn the computer was covering takes
// it back.
func PlayerJoined(g *GameState, p PlayerID) bool {
	if p == "" || p == ComputerID || g.IsSeated(p) || len(g.Players) >= MaxHumans {
		return false
	}
	g.Players = append(g.Players, p)

	compGrp, compHas := g.Colors[ComputerID]
	prev, returning := g.departed[p]
	delete(g.departed, p)

	takeTurn := g.Turn == ComputerID && g.coveringFor == p
	if len(g.Players) == MaxHumans {
		other := g.Players[0]
		if otherGrp, ok := g.Colors[other]; ok {
			g.Colors[p] = otherGrp.Other()
		} else if compHas {
			g.Colors[p] = compGrp
		}
		delete(g.Colors, ComputerID)
		takeTurn = g.Turn == ComputerID
	} else if compHas {
		if returning {
			g.Colors[p] = prev
			g.Colors[ComputerID] = prev.Other()
		} else {
			g.Colors[p] = compGrp.Other()
		}
	}

	if takeTurn {
		g.Turn = p
		g.coveringFor = ""
		g.Search.Reset()
	}
	return true
}

// PlayerLeft removes a human. The computer takes their group only when it
// has none of its own, and takes the turn if they held it.
func PlayerLeft(g *GameState, p PlayerID) bool {
	idx := -1
	for i, s := range g.Players {
		if s == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if grp, ok := g.Colors[p]; ok {
		g.departed[p] = grp
		if _, compHas := g.Colors[ComputerID]; !compHas {
			g.Colors[ComputerID] = grp
		}
		delete(g.Colors, p)
	}
	if g.Turn == p {
		g.Turn = ComputerID
		g.coveringFor = p
		g.Search.Reset()
	}
	return true
}
