package game

import (
	"math"

	"github.com/playmatatu/billiards/internal/physics"
)

// Candidate ratings, higher is better.
const (
	ratingNothing = 0
	ratingContact = 1
	ratingPot     = 2
	ratingWin     = 3
)

// AIConfig bounds the computer's shot search.
type AIConfig struct {
	// Candidates is the number of evenly spaced angles tried per turn.
	Candidates int `json:"candidates"`
	// SimTicksPerTick is the simulated tick budget spent per real tick.
	SimTicksPerTick int `json:"sim_ticks_per_tick"`
	// MaxSimTicks caps the simulated duration of a single candidate.
	MaxSimTicks int `json:"max_sim_ticks"`
	// Candidate shot strength is drawn uniformly from [MinPower, MaxPower].
	MinPower float64 `json:"min_power"`
	MaxPower float64 `json:"max_power"`
	// ThinkDelayTicks is how long the computer waits before committing.
	ThinkDelayTicks int `json:"think_delay_ticks"`
}

// DefaultAIConfig is the normal difficulty: a 3 degree sweep.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Candidates:      120,
		SimTicksPerTick: 150,
		MaxSimTicks:     150,
		MinPower:        60,
		MaxPower:        200,
		ThinkDelayTicks: 15,
	}
}

// HardAIConfig sweeps in 1 degree steps.
func HardAIConfig() AIConfig {
	cfg := DefaultAIConfig()
	cfg.Candidates = 360
	cfg.SimTicksPerTick = 300
	return cfg
}

// AIConfigFor maps a difficulty name to its config.
func AIConfigFor(difficulty string) AIConfig {
	if difficulty == "hard" {
		return HardAIConfig()
	}
	return DefaultAIConfig()
}

// ShotSearch is the computer's resumable search over candidate shots. It
// survives across ticks and is reset whenever the turn passes to the computer.
type ShotSearch struct {
	index   int
	simTick int

	scratch    *physics.World
	scratchCue physics.BodyID

	// candidate in flight
	rating    int
	decided   bool
	angle     float64
	power     float64
	firstSeen bool

	bestRating int
	bestAngle  float64
	bestPower  float64

	evaluated int
	delay     int
}

// Reset discards all search progress.
func (s *ShotSearch) Reset() {
	*s = ShotSearch{}
}

// Progress returns the candidate being evaluated and the candidate count.
func (s *ShotSearch) Progress(cfg AIConfig) (index, total int) {
	return s.index, cfg.Candidates
}

// Best returns the best rating found so far and the shot that earned it.
func (s *ShotSearch) Best() (rating int, angle, power float64) {
	return s.bestRating, s.bestAngle, s.bestPower
}

// Evaluated counts the candidates fully rated since the last reset.
func (s *ShotSearch) Evaluated() int {
	return s.evaluated
}

// stepSearch spends one tick's budget on the search and commits the shot
// once every candidate has been rated and the thinking delay has passed.
func stepSearch(g *GameState) {
	s := &g.Search
	cfg := g.AI

	if s.index >= cfg.Candidates {
		if s.delay < cfg.ThinkDelayTicks {
			s.delay++
			return
		}
		commitShot(g)
		return
	}

	budget := cfg.SimTicksPerTick
	if budget < 1 {
		budget = 1
	}
	for budget > 0 && s.index < cfg.Candidates {
		if s.scratch == nil {
			s.begin(g)
		}
		for budget > 0 && !s.candidateDone(cfg) {
			s.advance(g)
			budget--
		}
		if s.candidateDone(cfg) {
			s.finishCandidate()
		}
	}
}

// begin clones the table and strikes the cue ball for the current candidate.
func (s *ShotSearch) begin(g *GameState) {
	cfg := g.AI
	s.scratch = g.World.Clone()
	s.scratchCue = g.CueBallID
	s.simTick = 0
	s.rating = ratingNothing
	s.decided = false
	s.firstSeen = false
	s.angle = float64(s.index) * 2 * math.Pi / float64(cfg.Candidates)
	s.power = cfg.MinPower + g.rng.Float64()*(cfg.MaxPower-cfg.MinPower)

	v := physics.FromAngle(s.angle, s.power*PowerScale)
	if m := v.Magnitude(); m > MaxShotPower {
		v = v.Times(MaxShotPower / m)
	}
	s.scratch.ApplyVelocity(s.scratchCue, v)
}

func (s *ShotSearch) candidateDone(cfg AIConfig) bool {
	if s.scratch == nil {
		return false
	}
	return s.decided || s.simTick >= cfg.MaxSimTicks || (s.simTick > 0 && s.scratch.AtRest())
}

// advance simulates one tick of the current candidate and updates its rating.
func (s *ShotSearch) advance(g *GameState) {
	s.simTick++
	r := simulateTick(s.scratch, s.scratchCue)

	own, hasGroup := g.ColorOf(ComputerID)

	if r.hasCueHit && !s.firstSeen {
		s.firstSeen = true
		legal := true
		if hasGroup && r.cueHit != own.Kind() {
			legal = r.cueHit == BallBlack && g.BallsLeft(own.Kind()) == 0
		}
		if !legal {
			s.settle(ratingNothing)
			return
		}
		if s.rating < ratingContact {
			s.rating = ratingContact
		}
	}

	for _, b := range r.potted {
		if b.Kind == BallCue {
			s.settle(ratingNothing)
			return
		}
	}
	for _, b := range r.potted {
		switch b.Kind {
		case BallBlack:
			if hasGroup && countBalls(s.scratch, own.Kind()) == 0 {
				s.settle(ratingWin)
			} else {
				s.settle(ratingNothing)
			}
			return
		case BallRed, BallYellow:
			grp, _ := groupOf(b.Kind)
			if hasGroup && grp != own {
				s.settle(ratingNothing)
				return
			}
			if s.rating < ratingPot {
				s.rating = ratingPot
			}
		}
	}
}

// settle fixes the candidate's rating; nothing later in the shot can change it.
func (s *ShotSearch) settle(rating int) {
	s.rating = rating
	s.decided = true
}

func (s *ShotSearch) finishCandidate() {
	if s.rating > s.bestRating {
		s.bestRating = s.rating
		s.bestAngle = s.angle
		s.bestPower = s.power
	}
	s.evaluated++
	s.index++
	s.scratch = nil
}

// commitShot plays the best candidate, or a random shot when nothing scored.
func commitShot(g *GameState) {
	s := &g.Search
	var dir physics.Vec2
	if s.bestRating > ratingNothing {
		dir = physics.FromAngle(s.bestAngle, s.bestPower)
	} else {
		dir = physics.FromAngle(g.rng.Float64()*2*math.Pi, ComputerPower)
	}
	s.Reset()
	Shot(g, ComputerID, dir)
}
