package world

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/motion"
)

// Actor is a thing driven by a brain. Its sense.Thing side is the shared
// snapshot view; everything else is private to its own brain while brains
// run, so actors may be updated from different goroutines.
type Actor struct {
	*thing
	w       *World
	caps    motion.Capabilities
	desired motion.Desired
	brain   *brain.Brain

	pending  []brain.Verb
	cooldown float64 // seconds until the next shot
}

var _ brain.Actor = (*Actor)(nil)

// Heading returns the snapshot heading in radians.
func (a *Actor) Heading() float64 { return a.heading }

// Velocity returns the snapshot velocity.
func (a *Actor) Velocity() r3.Vec { return a.vel }

// Capabilities returns the actor type's locomotion limits.
func (a *Actor) Capabilities() motion.Capabilities { return a.caps }

// Motion returns the record the brain writes this tick's motion into.
func (a *Actor) Motion() *motion.Desired { return &a.desired }

// Brain returns the controlling brain.
func (a *Actor) Brain() *brain.Brain { return a.brain }

// Type returns the actor type name.
func (a *Actor) Type() string { return a.class.Type }

// Perform queues a verb for the apply phase. It refuses shots during the
// cooldown and jumps while airborne.
func (a *Actor) Perform(v brain.Verb) bool {
	switch v.Kind {
	case brain.VerbShoot:
		if a.cooldown > 0 {
			return false
		}
		a.cooldown = a.w.cfg.World.ShootCooldown
	case brain.VerbJump:
		if a.caps.MaxVerticalSpeed > 0 || a.pos.Z > 0 {
			return false
		}
	case brain.VerbSay:
		if v.Text == "" {
			return false
		}
	}
	a.pending = append(a.pending, v)
	return true
}
