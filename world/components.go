package world

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/sense"
)

// Position is a thing's location. Z is height above the ground.
type Position struct {
	X, Y, Z float64
}

// Vec returns p as a vector.
func (p Position) Vec() r3.Vec { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// Set stores v.
func (p *Position) Set(v r3.Vec) { p.X, p.Y, p.Z = v.X, v.Y, v.Z }

// Velocity is a thing's velocity in units per second.
type Velocity struct {
	X, Y, Z float64
}

// Vec returns v as a vector.
func (v Velocity) Vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Set stores u.
func (v *Velocity) Set(u r3.Vec) { v.X, v.Y, v.Z = u.X, u.Y, u.Z }

// Rotation represents a thing's heading and angular velocity.
type Rotation struct {
	Heading float64 // radians, 0 = east
	AngVel  float64 // radians per second
}

// Body is the collision circle.
type Body struct {
	Radius float64
}

// Tag identifies a thing and carries what filters match on.
type Tag struct {
	ID         uint64
	Type       string
	Color      sense.Color
	Expression sense.Expression
}

// Status holds lifecycle flags.
type Status struct {
	Dead     bool
	Squashed bool
	Missile  bool
	Ignored  bool
	Owner    uint64  // shooter of a missile
	TTL      float64 // seconds left for a missile
}
