package world

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/whendo/sense"
)

// thing is the per-tick read-only view of an entity handed to brains.
// Views outlive their entity: a rule may remember a thing that has since
// been removed, and the view then reports it as no longer alive.
type thing struct {
	e       ecs.Entity
	id      uint64
	pos     r3.Vec
	vel     r3.Vec
	heading float64
	radius  float64
	class   sense.Classification
	status  Status
	alive   bool
	actor   *Actor
}

var _ sense.Thing = (*thing)(nil)

func (t *thing) ID() uint64                           { return t.id }
func (t *thing) Position() r3.Vec                     { return t.pos }
func (t *thing) Radius() float64                      { return t.radius }
func (t *thing) Classification() sense.Classification { return t.class }
func (t *thing) Alive() bool                          { return t.alive }
func (t *thing) Ignored() bool                        { return t.status.Ignored }
func (t *thing) Dead() bool                           { return t.status.Dead }
func (t *thing) Squashed() bool                       { return t.status.Squashed }
func (t *thing) Missile() bool                        { return t.status.Missile }

// solid reports whether the thing stops ground bodies.
func (t *thing) solid() bool {
	return t.alive && !t.status.Missile && !t.status.Ignored
}
