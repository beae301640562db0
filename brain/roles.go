package brain

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/sense"
)

// Sensor perceives the world for one rule. StartUpdate resets its buffer,
// FinishUpdate seals it and ComposeSensorTargetSet turns it into the
// rule's target set through Reflex.Offer and Reflex.Conclude.
type Sensor interface {
	Element
	StartUpdate(f *Frame)
	FinishUpdate(f *Frame)
	ComposeSensorTargetSet(f *Frame, r *Reflex)
}

// ThingPerceiver is a sensor that wants to be shown world things. The
// scheduler calls ThingUpdate once per live, non-ignored thing that passes
// the rule's selection predicate.
type ThingPerceiver interface {
	Sensor
	ThingUpdate(f *Frame, thing sense.Thing, direction r3.Vec, rng float64)
}

// Filter narrows targets and votes on the rule's set-level verdict.
type Filter interface {
	Element
	MatchTarget(r *Reflex, t *sense.Target) bool
	MatchAction(f *Frame, r *Reflex) bool
}

// Valuer is a filter contributing a number to comparisons and timers.
type Valuer interface {
	Value() float64
}

// Selector turns an accepted target set into motion requests. It is only
// called when the rule's verdict is true and must always return a set.
type Selector interface {
	Element
	ComposeActionSet(f *Frame, r *Reflex) *motion.ActionSet
}

// Modifier accumulates parameters for the selector and actuator.
type Modifier interface {
	Element
	GatherParams(p *ModifierParams)
}

// HeadingModifier transforms a steering direction in its own reference
// frame.
type HeadingModifier interface {
	Modifier
	ModifyHeading(dir r3.Vec, heading float64) r3.Vec
}

// Actuator applies a rule's outcome.
type Actuator interface {
	Element
	AttachActionSet(set *motion.ActionSet)
	Update(f *Frame, r *Reflex)
}

// Stateful tiles keep runtime state that must be cleared when the owning
// task is switched out.
type Stateful interface {
	ResetState()
}
