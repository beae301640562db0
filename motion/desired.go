// Package motion holds the per-actor desired-motion record and the pooled
// motion requests that rules write into it.
package motion

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Group is a mutual-exclusion group of the desired-motion record. At most
// one field per group may be set in a tick.
type Group uint8

const (
	GroupMovement Group = iota // velocity, target location, speed
	GroupTurning               // turn rate, heading
	GroupVertical              // vertical speed, altitude
	GroupCount
)

func (g Group) String() string {
	switch g {
	case GroupMovement:
		return "movement"
	case GroupTurning:
		return "turning"
	case GroupVertical:
		return "vertical"
	}
	return "unknown"
}

// Constraints block groups or axes after all rules have written.
type Constraints uint8

const (
	Immobile   Constraints = 1 << iota // no movement of any kind
	NoTurning                          // heading is frozen
	NoVertical                         // altitude is frozen
	NoStrafe                           // velocity restricted to the heading axis
)

// Has checks if the set contains a constraint.
func (c Constraints) Has(other Constraints) bool {
	return c&other != 0
}

type claim struct {
	set   bool
	kind  Kind
	owner int
}

// Desired is the motion an actor's rules request for the current tick. It is
// written by actions during the actuator pass and read once by the
// locomotion executor afterwards.
type Desired struct {
	claims [GroupCount]claim

	speed       float64
	velocity    r3.Vec
	target      r3.Vec
	targetSpeed float64
	turnRate    float64
	heading     float64
	vertSpeed   float64
	altitude    float64

	// Axis used by NoStrafe; set by the executor before constraints run.
	forward r3.Vec
}

// Reset clears every group. Called at the start of each tick.
func (d *Desired) Reset() {
	*d = Desired{}
}

// claim marks g as written by owner. First writer wins: a group that is
// already claimed this tick refuses later writes.
func (d *Desired) claim(g Group, k Kind, owner int) bool {
	c := &d.claims[g]
	if c.set {
		return false
	}
	c.set = true
	c.kind = k
	c.owner = owner
	return true
}

// Owner reports which rule priority and action kind wrote group g.
func (d *Desired) Owner(g Group) (owner int, kind Kind, ok bool) {
	c := d.claims[g]
	return c.owner, c.kind, c.set
}

// Claimed reports whether any rule wrote group g this tick.
func (d *Desired) Claimed(g Group) bool {
	return d.claims[g].set
}

// Speed returns the requested forward speed.
func (d *Desired) Speed() (float64, bool) {
	c := d.claims[GroupMovement]
	return d.speed, c.set && c.kind == KindSpeed
}

// Velocity returns the requested world-space velocity. Avoid requests are
// reported here as well; use Owner to tell them apart.
func (d *Desired) Velocity() (r3.Vec, bool) {
	c := d.claims[GroupMovement]
	return d.velocity, c.set && (c.kind == KindVelocity || c.kind == KindAvoid)
}

// TargetLocation returns the requested destination and approach speed.
func (d *Desired) TargetLocation() (r3.Vec, float64, bool) {
	c := d.claims[GroupMovement]
	return d.target, d.targetSpeed, c.set && c.kind == KindTargetLocation
}

// TurnRate returns the requested signed turn rate in radians per second.
func (d *Desired) TurnRate() (float64, bool) {
	c := d.claims[GroupTurning]
	return d.turnRate, c.set && c.kind == KindTurnSpeed
}

// Heading returns the requested absolute heading in radians.
func (d *Desired) Heading() (float64, bool) {
	c := d.claims[GroupTurning]
	return d.heading, c.set && c.kind == KindHeading
}

// VerticalSpeed returns the requested vertical speed.
func (d *Desired) VerticalSpeed() (float64, bool) {
	c := d.claims[GroupVertical]
	return d.vertSpeed, c.set && c.kind == KindVerticalSpeed
}

// Altitude returns the requested altitude.
func (d *Desired) Altitude() (float64, bool) {
	c := d.claims[GroupVertical]
	return d.altitude, c.set && c.kind == KindAltitude
}

// SetForward tells the record which axis counts as "forward" for NoStrafe.
func (d *Desired) SetForward(dir r3.Vec) {
	d.forward = dir
}

// Constrain applies post-processing constraints gathered from the rules that
// fired this tick. Claims stay recorded so ownership remains inspectable;
// the blocked values are zeroed.
func (d *Desired) Constrain(c Constraints) {
	if c == 0 {
		return
	}
	if c.Has(Immobile) {
		d.speed = 0
		d.velocity = r3.Vec{}
		d.targetSpeed = 0
		d.vertSpeed = 0
	}
	if c.Has(NoTurning) {
		d.turnRate = 0
		if d.claims[GroupTurning].kind == KindHeading {
			d.claims[GroupTurning] = claim{}
		}
	}
	if c.Has(NoVertical) {
		d.vertSpeed = 0
		if d.claims[GroupVertical].kind == KindAltitude {
			d.claims[GroupVertical] = claim{}
		}
	}
	if c.Has(NoStrafe) && d.forward != (r3.Vec{}) {
		fwd := r3.Unit(d.forward)
		d.velocity = r3.Scale(r3.Dot(d.velocity, fwd), fwd)
	}
}
