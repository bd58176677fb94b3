package game

import "fmt"

// PlayerID identifies a seat at a table.
type PlayerID string

// BallKind is the identity class of a ball.
type BallKind int

const (
	BallCue BallKind = iota
	BallRed
	BallYellow
	BallBlack
)

func (k BallKind) String() string {
	switch k {
	case BallCue:
		return "cue"
	case BallRed:
		return "red"
	case BallYellow:
		return "yellow"
	case BallBlack:
		return "black"
	}
	return fmt.Sprintf("ball(%d)", int(k))
}

func (k BallKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BallKind) UnmarshalText(text []byte) error {
	for _, kind := range []BallKind{BallCue, BallRed, BallYellow, BallBlack} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown ball class %q", text)
}

// Group is the color class a player pockets once groups are assigned.
type Group int

const (
	GroupRed Group = iota
	GroupYellow
)

// Other returns the complementary group.
func (g Group) Other() Group {
	if g == GroupRed {
		return GroupYellow
	}
	return GroupRed
}

// Kind returns the ball kind belonging to the group.
func (g Group) Kind() BallKind {
	if g == GroupRed {
		return BallRed
	}
	return BallYellow
}

func (g Group) String() string {
	return g.Kind().String()
}

func (g Group) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Group) UnmarshalText(text []byte) error {
	switch string(text) {
	case "red":
		*g = GroupRed
	case "yellow":
		*g = GroupYellow
	default:
		return fmt.Errorf("unknown group %q", text)
	}
	return nil
}

// groupOf maps a colored ball to its group. Cue and Black belong to no group.
func groupOf(k BallKind) (Group, bool) {
	switch k {
	case BallRed:
		return GroupRed, true
	case BallYellow:
		return GroupYellow, true
	}
	return 0, false
}

// Ball is the identity carried by a ball body. Number is zero unless the
// table was racked with numbered balls.
type Ball struct {
	Kind   BallKind `json:"class"`
	Number int      `json:"number,omitempty"`
}

// Balls are stored on physics bodies as an integer tag.
func (b Ball) tag() int {
	return int(b.Kind)<<8 | b.Number
}

func ballFromTag(tag int) Ball {
	return Ball{Kind: BallKind(tag >> 8), Number: tag & 0xff}
}
