package physics

import "math"

// contact describes how two shapes overlap: the unit normal pointing from the
// first shape towards the second and the penetration depth along it.
type contact struct {
	normal Vec2
	depth  float64
}

// circleCircle tests two circles for overlap.
func circleCircle(a, b *Body) (contact, bool) {
	delta := b.Center.Minus(a.Center)
	reach := a.Radius + b.Radius
	distSq := delta.MagnitudeSquared()
	if distSq >= reach*reach {
		return contact{}, false
	}
	dist := math.Sqrt(distSq)
	if dist == 0 {
		// Coincident centres: pick a fixed axis so the result stays deterministic.
		return contact{normal: Vec2{X: 1}, depth: reach}, true
	}
	return contact{normal: delta.Times(1 / dist), depth: reach - dist}, true
}

// circleRect tests a circle against an axis-aligned rectangle. The normal points
// from the rectangle towards the circle.
func circleRect(c, r *Body) (contact, bool) {
	halfW, halfH := r.Width/2, r.Height/2
	minX, maxX := r.Center.X-halfW, r.Center.X+halfW
	minY, maxY := r.Center.Y-halfH, r.Center.Y+halfH

	closest := Vec2{X: clamp(c.Center.X, minX, maxX), Y: clamp(c.Center.Y, minY, maxY)}
	delta := c.Center.Minus(closest)
	distSq := delta.MagnitudeSquared()

	if distSq > 0 {
		if distSq >= c.Radius*c.Radius {
			return contact{}, false
		}
		dist := math.Sqrt(distSq)
		return contact{normal: delta.Times(1 / dist), depth: c.Radius - dist}, true
	}

	// Centre inside the rectangle: push out through the nearest face.
	left := c.Center.X - minX
	right := maxX - c.Center.X
	top := c.Center.Y - minY
	bottom := maxY - c.Center.Y
	best := contact{normal: Vec2{X: -1}, depth: left + c.Radius}
	if right < best.depth-c.Radius {
		best = contact{normal: Vec2{X: 1}, depth: right + c.Radius}
	}
	if top < best.depth-c.Radius {
		best = contact{normal: Vec2{Y: -1}, depth: top + c.Radius}
	}
	if bottom < best.depth-c.Radius {
		best = contact{normal: Vec2{Y: 1}, depth: bottom + c.Radius}
	}
	return best, true
}

// objectsConverging reports whether two bodies move towards each other along n.
func objectsConverging(a, b *Body, n Vec2) bool {
	return b.Velocity.Minus(a.Velocity).Dot(n) < 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
