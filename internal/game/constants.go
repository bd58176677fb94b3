package game

// Table geometry and shot tuning. Distances are table units, velocities are
// table units per second.
const (
	TableWidth  = 250.0
	TableHeight = 140.0
	BallRadius  = 4.0

	BallRestitution    = 1.0
	CushionRestitution = 0.9

	PowerScale   = 3.0
	MinPower     = 50.0
	MaxShotPower = 600.0

	PhysicsFPS  = 60
	SubSteps    = 2
	Damping     = 0.98
	MinVelocity = 1.0

	TickRate = 30

	// Shots awarded to the opponent after a foul.
	FoulShots = 2

	// Shot strength the computer falls back to when no candidate scored.
	ComputerPower = 150.0
)

// ComputerID is the reserved identity of the computer opponent.
const ComputerID PlayerID = "computer"
