package physics

import "math"

// BodyID identifies a body within a world and every clone taken from it.
type BodyID int

// ShapeType is the collision shape of a body.
type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeRectangle
)

// maxIterations bounds the sub-iterations of a single Step.
const maxIterations = 64

// Body is a rigid body. Static bodies never move; sensor bodies report
// overlapping dynamic bodies without any physical response.
type Body struct {
	ID          BodyID    `json:"id"`
	Shape       ShapeType `json:"shape"`
	Center      Vec2      `json:"center"`
	Velocity    Vec2      `json:"velocity"`
	Radius      float64   `json:"radius,omitempty"`
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	Static      bool      `json:"static"`
	Sensor      bool      `json:"sensor,omitempty"`
	Restitution float64   `json:"restitution"`
	Tag         int       `json:"tag"`

	// Overlaps holds the dynamic bodies touching a sensor after the last Step.
	Overlaps []BodyID `json:"-"`
}

// Collision is a pair of bodies that came into contact during a Step.
type Collision struct {
	BodyA BodyID
	BodyB BodyID
}

// NewCircle creates a dynamic circular body.
func NewCircle(center Vec2, radius, restitution float64) *Body {
	return &Body{Shape: ShapeCircle, Center: center, Radius: radius, Restitution: restitution}
}

// NewSensor creates a static circular sensor.
func NewSensor(center Vec2, radius float64) *Body {
	return &Body{Shape: ShapeCircle, Center: center, Radius: radius, Static: true, Sensor: true}
}

// NewRectangle creates a static axis-aligned rectangle centred on center.
func NewRectangle(center Vec2, width, height, restitution float64) *Body {
	return &Body{Shape: ShapeRectangle, Center: center, Width: width, Height: height, Static: true, Restitution: restitution}
}

// World owns every body of a simulation.
type World struct {
	nextID  BodyID
	dynamic []*Body
	static  []*Body
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{nextID: 1}
}

// AddBody inserts b and assigns its id.
func (w *World) AddBody(b *Body) BodyID {
	b.ID = w.nextID
	w.nextID++
	if b.Static {
		w.static = append(w.static, b)
	} else {
		w.dynamic = append(w.dynamic, b)
	}
	return b.ID
}

// RemoveBody deletes the body with id. It reports false when no such body exists.
func (w *World) RemoveBody(id BodyID) bool {
	for i, b := range w.dynamic {
		if b.ID == id {
			w.dynamic = append(w.dynamic[:i], w.dynamic[i+1:]...)
			return true
		}
	}
	for i, b := range w.static {
		if b.ID == id {
			w.static = append(w.static[:i], w.static[i+1:]...)
			return true
		}
	}
	return false
}

// Body looks up a body by id.
func (w *World) Body(id BodyID) (*Body, bool) {
	for _, b := range w.dynamic {
		if b.ID == id {
			return b, true
		}
	}
	for _, b := range w.static {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// DynamicBodies returns the moving bodies. The slice must not be modified.
func (w *World) DynamicBodies() []*Body {
	return w.dynamic
}

// StaticBodies returns the fixed bodies, sensors included. The slice must not be modified.
func (w *World) StaticBodies() []*Body {
	return w.static
}

// Sensors returns the static sensor bodies.
func (w *World) Sensors() []*Body {
	var out []*Body
	for _, b := range w.static {
		if b.Sensor {
			out = append(out, b)
		}
	}
	return out
}

// AtRest returns true if every dynamic body has zero velocity.
func (w *World) AtRest() bool {
	for _, b := range w.dynamic {
		if !b.Velocity.IsZero() {
			return false
		}
	}
	return true
}

// ApplyVelocity adds v to the velocity of the body with id.
func (w *World) ApplyVelocity(id BodyID, v Vec2) bool {
	b, ok := w.Body(id)
	if !ok || b.Static {
		return false
	}
	b.Velocity = b.Velocity.Plus(v)
	return true
}

// Clone returns a deep copy of the world. Ids are preserved.
func (w *World) Clone() *World {
	c := &World{
		nextID:  w.nextID,
		dynamic: make([]*Body, len(w.dynamic)),
		static:  make([]*Body, len(w.static)),
	}
	for i, b := range w.dynamic {
		c.dynamic[i] = b.clone()
	}
	for i, b := range w.static {
		c.static[i] = b.clone()
	}
	return c
}

func (b *Body) clone() *Body {
	cp := *b
	if b.Overlaps != nil {
		cp.Overlaps = append([]BodyID(nil), b.Overlaps...)
	}
	return &cp
}

// Step advances the world by 1/fps seconds and returns the collisions that
// occurred, each pair reported once.
func (w *World) Step(fps int) []Collision {
	dt := 1.0 / float64(fps)
	iterations := w.iterationsFor(dt)
	h := dt / float64(iterations)

	var collisions []Collision
	seen := make(map[Collision]bool)
	record := func(a, b BodyID) {
		c := Collision{BodyA: a, BodyB: b}
		if !seen[c] {
			seen[c] = true
			collisions = append(collisions, c)
		}
	}

	for it := 0; it < iterations; it++ {
		for _, b := range w.dynamic {
			b.Center = b.Center.Plus(b.Velocity.Times(h))
		}
		w.resolveBallBall(record)
		w.resolveBallStatic(record)
	}
	w.updateSensors()

	return collisions
}

// iterationsFor splits dt so no body travels more than half its radius per iteration.
func (w *World) iterationsFor(dt float64) int {
	iterations := 1
	for _, b := range w.dynamic {
		if b.Radius <= 0 {
			continue
		}
		travel := b.Velocity.Magnitude() * dt
		n := int(math.Ceil(travel / (b.Radius / 2)))
		if n > iterations {
			iterations = n
		}
	}
	if iterations > maxIterations {
		iterations = maxIterations
	}
	return iterations
}

func (w *World) resolveBallBall(record func(a, b BodyID)) {
	for i := 0; i < len(w.dynamic); i++ {
		a := w.dynamic[i]
		for j := i + 1; j < len(w.dynamic); j++ {
			b := w.dynamic[j]
			c, ok := circleCircle(a, b)
			if !ok {
				continue
			}

			// Separate the pair evenly along the contact normal.
			push := c.normal.Times(c.depth / 2)
			a.Center = a.Center.Minus(push)
			b.Center = b.Center.Plus(push)

			if objectsConverging(a, b, c.normal) {
				// Equal masses: exchange the normal components scaled by restitution.
				e := math.Min(a.Restitution, b.Restitution)
				vn := b.Velocity.Minus(a.Velocity).Dot(c.normal)
				impulse := c.normal.Times(-(1 + e) * vn / 2)
				a.Velocity = a.Velocity.Minus(impulse)
				b.Velocity = b.Velocity.Plus(impulse)
			}
			record(a.ID, b.ID)
		}
	}
}

func (w *World) resolveBallStatic(record func(a, b BodyID)) {
	for _, ball := range w.dynamic {
		for _, s := range w.static {
			if s.Sensor {
				continue
			}
			var c contact
			var ok bool
			switch s.Shape {
			case ShapeRectangle:
				c, ok = circleRect(ball, s)
			case ShapeCircle:
				// circleCircle's normal points from ball to s; flip it.
				c, ok = circleCircle(ball, s)
				c.normal = c.normal.Times(-1)
			}
			if !ok {
				continue
			}

			ball.Center = ball.Center.Plus(c.normal.Times(c.depth))
			vn := ball.Velocity.Dot(c.normal)
			if vn < 0 {
				e := math.Min(ball.Restitution, s.Restitution)
				ball.Velocity = ball.Velocity.Minus(c.normal.Times((1 + e) * vn))
			}
			record(ball.ID, s.ID)
		}
	}
}

func (w *World) updateSensors() {
	for _, s := range w.static {
		if !s.Sensor {
			continue
		}
		s.Overlaps = s.Overlaps[:0]
		for _, b := range w.dynamic {
			if _, ok := circleCircle(s, b); ok {
				s.Overlaps = append(s.Overlaps, b.ID)
			}
		}
	}
}
