package game

import "github.com/playmatatu/billiards/internal/physics"

// RackStyle selects how object balls are identified.
type RackStyle string

const (
	// RackRedYellow racks balls that carry only a color class.
	RackRedYellow RackStyle = "red_yellow"
	// RackNumbered racks spots (1-7, red class) and stripes (9-15, yellow class) around the 8.
	RackNumbered RackStyle = "numbered"
)

// ParseRackStyle falls back to RackRedYellow for unknown values.
func ParseRackStyle(s string) RackStyle {
	if RackStyle(s) == RackNumbered {
		return RackNumbered
	}
	return RackRedYellow
}

// rackOrder is the class of each rack position, front row first.
var rackOrder = [15]BallKind{
	BallYellow, BallRed, BallYellow, BallYellow, BallBlack,
	BallRed, BallRed, BallYellow, BallRed, BallYellow,
	BallYellow, BallRed, BallRed, BallYellow, BallRed,
}

// BreakPosition is where the cue ball is placed at the start and after a scratch.
var BreakPosition = physics.NewVec2(TableWidth/6, TableHeight/2)

// cushionRect is a cushion given by its top-left corner and size.
type cushionRect struct {
	x, y, w, h float64
}

var cushions = []cushionRect{
	{TableWidth * 0.04, -TableHeight * 0.01, TableWidth * 0.42, TableHeight * 0.06},
	{TableWidth * 0.54, -TableHeight * 0.01, TableWidth * 0.41, TableHeight * 0.06},
	{TableWidth * 0.04, TableHeight * 0.915, TableWidth * 0.42, TableHeight * 0.06},
	{TableWidth * 0.54, TableHeight * 0.915, TableWidth * 0.41, TableHeight * 0.06},
	{-TableWidth / 30, TableHeight * 0.105, TableWidth / 20, TableHeight * 0.76},
	{TableWidth - TableWidth/40, TableHeight * 0.105, TableWidth / 20, TableHeight * 0.76},
}

type pocket struct {
	center physics.Vec2
	radius float64
}

var pockets = []pocket{
	{physics.NewVec2(-TableWidth*0.01, TableHeight*0.02), TableWidth / 30},
	{physics.NewVec2(-TableWidth*0.01, TableHeight*0.94), TableWidth / 30},
	{physics.NewVec2(TableWidth, TableHeight*0.02), TableWidth / 30},
	{physics.NewVec2(TableWidth, TableHeight*0.94), TableWidth / 30},
	{physics.NewVec2(TableWidth*0.498, TableHeight*0.01), TableWidth / 35},
	{physics.NewVec2(TableWidth*0.498, TableHeight*0.97), TableWidth / 35},
}

// BuildTable adds the six cushions and six pocket sensors.
func BuildTable(w *physics.World) {
	for _, c := range cushions {
		center := physics.NewVec2(c.x+c.w/2, c.y+c.h/2)
		w.AddBody(physics.NewRectangle(center, c.w, c.h, CushionRestitution))
	}
	for _, p := range pockets {
		w.AddBody(physics.NewSensor(p.center, p.radius))
	}
}

// BuildRack places the cue ball at the break position and the 15 object
// balls in a five-row triangle. It returns the cue ball id.
func BuildRack(w *physics.World, style RackStyle) physics.BodyID {
	cueID := SpawnCueBall(w)

	nextRed, nextYellow := 1, 9
	index := 0
	for i := 0; i < 5; i++ {
		for j := 0; j <= i; j++ {
			ball := Ball{Kind: rackOrder[index]}
			if style == RackNumbered {
				switch ball.Kind {
				case BallRed:
					ball.Number = nextRed
					nextRed++
				case BallYellow:
					ball.Number = nextYellow
					nextYellow++
				case BallBlack:
					ball.Number = 8
				}
			}
			center := physics.NewVec2(
				TableWidth*0.6+float64(i)*BallRadius*2,
				-(float64(i) * BallRadius)+float64(j)*BallRadius*2+TableHeight/2,
			)
			addBall(w, center, ball)
			index++
		}
	}
	return cueID
}

// SpawnCueBall adds a fresh cue ball at the break position.
func SpawnCueBall(w *physics.World) physics.BodyID {
	return addBall(w, BreakPosition, Ball{Kind: BallCue})
}

func addBall(w *physics.World, center physics.Vec2, ball Ball) physics.BodyID {
	body := physics.NewCircle(center, BallRadius, BallRestitution)
	body.Tag = ball.tag()
	return w.AddBody(body)
}
