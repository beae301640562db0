package brain

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/nav"
	"github.com/pthm-cable/whendo/sense"
)

type fakeThing struct {
	id    uint64
	pos   r3.Vec
	class sense.Classification
	dead  bool
}

func (t *fakeThing) ID() uint64                           { return t.id }
func (t *fakeThing) Position() r3.Vec                     { return t.pos }
func (t *fakeThing) Radius() float64                      { return 0.5 }
func (t *fakeThing) Classification() sense.Classification { return t.class }
func (t *fakeThing) Alive() bool                          { return true }
func (t *fakeThing) Ignored() bool                        { return false }
func (t *fakeThing) Dead() bool                           { return t.dead }
func (t *fakeThing) Squashed() bool                       { return false }
func (t *fakeThing) Missile() bool                        { return false }

type fakeActor struct {
	fakeThing
	heading   float64
	desired   motion.Desired
	performed []Verb
}

func (a *fakeActor) Heading() float64 { return a.heading }
func (a *fakeActor) Velocity() r3.Vec { return r3.Vec{} }

func (a *fakeActor) Motion() *motion.Desired {
	return &a.desired
}

func (a *fakeActor) Capabilities() motion.Capabilities {
	return motion.Capabilities{MaxSpeed: 4, MaxTurnRate: 3}
}

func (a *fakeActor) Perform(v Verb) bool {
	a.performed = append(a.performed, v)
	return true
}

func newActor() *fakeActor {
	return &fakeActor{fakeThing: fakeThing{id: 1, class: sense.Classification{Type: "bot"}}}
}

type fakeWorld struct {
	things []sense.Thing
}

func (w *fakeWorld) Things(fn func(sense.Thing) bool) {
	for _, t := range w.things {
		if !fn(t) {
			return
		}
	}
}

func (w *fakeWorld) Score(string) int  { return 0 }
func (w *fakeWorld) Paths() *nav.Graph { return nil }

// flagSensor is true while *on is true. If remember is set it records the
// actor-relative point (5,0) as a remembered target whenever it fires.
type flagSensor struct {
	Base
	on       *bool
	remember bool
}

func (s *flagSensor) StartUpdate(*Frame)  {}
func (s *flagSensor) FinishUpdate(*Frame) {}

func (s *flagSensor) ComposeSensorTargetSet(f *Frame, r *Reflex) {
	if *s.on && s.remember {
		r.Remember(r3.Vec{X: 5}, nil)
	}
	r.Conclude(f, *s.on)
}

// seeSensor perceives every selected thing.
type seeSensor struct {
	Base
	seen []sense.Thing
}

func (s *seeSensor) StartUpdate(*Frame)  { s.seen = s.seen[:0] }
func (s *seeSensor) FinishUpdate(*Frame) {}

func (s *seeSensor) ThingUpdate(_ *Frame, th sense.Thing, _ r3.Vec, _ float64) {
	s.seen = append(s.seen, th)
}

func (s *seeSensor) ComposeSensorTargetSet(f *Frame, r *Reflex) {
	for _, th := range s.seen {
		r.Offer(f.Targets.Sense(f.Actor.Position(), th, f.Time))
	}
	r.Conclude(f, !r.TargetSet.Empty())
}

type typeFilter struct {
	Base
	want string
}

func (t *typeFilter) MatchTarget(_ *Reflex, tg *sense.Target) bool { return tg.Class.Type == t.want }
func (t *typeFilter) MatchAction(*Frame, *Reflex) bool             { return true }

type passFilter struct{ Base }

func (passFilter) MatchTarget(*Reflex, *sense.Target) bool { return true }
func (passFilter) MatchAction(*Frame, *Reflex) bool        { return true }

type noneFilter struct{ Base }

func (noneFilter) MatchTarget(*Reflex, *sense.Target) bool { return true }
func (noneFilter) MatchAction(_ *Frame, r *Reflex) bool    { return r.TargetSet.Empty() }

type speedSelector struct {
	Base
	speed float64
}

func (s *speedSelector) ComposeActionSet(f *Frame, r *Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	set.Add(f.Pools.Speed(s.speed * r.ModifierParams().Speed))
	return set
}

type moveActuator struct {
	Base
	set *motion.ActionSet
}

func (a *moveActuator) AttachActionSet(s *motion.ActionSet) { a.set = s }
func (a *moveActuator) Update(f *Frame, r *Reflex)          { r.ApplyMotion(f) }

type verbActuator struct{ Base }

func (verbActuator) AttachActionSet(*motion.ActionSet) {}

func (a *verbActuator) Update(f *Frame, r *Reflex) {
	if !f.ClaimVerb(a.P.Kind) {
		return
	}
	if f.Actor.Perform(Verb{Kind: a.P.Kind}) {
		r.MarkActedOn()
	}
}

type flagModifier struct {
	Base
	apply func(p *ModifierParams)
}

func (m *flagModifier) GatherParams(p *ModifierParams) { m.apply(p) }

func proto(id string, role Role, cats ...category.Category) *Prototype {
	return &Prototype{ID: id, Role: role, Kind: id, Categories: category.Of(cats...)}
}

var (
	protoFlag    = proto("sensor.flag", RoleSensor, category.Sensor)
	protoSee     = proto("sensor.see", RoleSensor, category.Sensor, category.SensorObject, category.ProvidesTarget)
	protoPad     = proto("sensor.pad", RoleSensor, category.Sensor, category.SensorInput, category.ProvidesDirection)
	protoType    = proto("filter.type", RoleFilter, category.Filter, category.FilterObjectType)
	protoNot     = proto("filter.not", RoleFilter, category.Filter, category.FilterNot)
	protoNone    = proto("filter.none", RoleFilter, category.Filter, category.FilterCount)
	protoMe      = proto("filter.me", RoleFilter, category.Filter, category.FilterMe)
	protoMove    = proto("actuator.move", RoleActuator, category.Actuator, category.ActuatorMovement)
	protoShoot   = proto("actuator.shoot", RoleActuator, category.Actuator, category.ActuatorVerb, category.ActuatorShoot)
	protoForward = proto("selector.forward", RoleSelector, category.Selector, category.SelectorForward)
	protoOnce    = proto("modifier.once", RoleModifier, category.Modifier, category.ModifierOnce)
	protoQuick   = proto("modifier.quickly", RoleModifier, category.Modifier, category.ModifierSpeed)
	protoAuto    = proto(HiddenSelectorAuto, RoleSelector, category.Selector, category.SelectorHidden)
	protoPadSel  = proto(HiddenSelectorGamePad, RoleSelector, category.Selector, category.SelectorHidden)
)

func init() {
	protoShoot.Kind = VerbShoot
	protoAuto.Hidden = true
	protoPadSel.Hidden = true
	protoAuto.Make = func(p *Prototype) Element { return &speedSelector{Base: Base{p}, speed: 1} }
	protoPadSel.Make = func(p *Prototype) Element { return &speedSelector{Base: Base{p}, speed: 2} }
}

type fakeRegistry map[string]*Prototype

func (r fakeRegistry) Sensor(id string) *Prototype   { return r[id] }
func (r fakeRegistry) Filter(id string) *Prototype   { return r[id] }
func (r fakeRegistry) Selector(id string) *Prototype { return r[id] }
func (r fakeRegistry) Modifier(id string) *Prototype { return r[id] }
func (r fakeRegistry) Actuator(id string) *Prototype { return r[id] }

var testRegistry = fakeRegistry{
	HiddenSelectorAuto:    protoAuto,
	HiddenSelectorGamePad: protoPadSel,
}

func flag(on *bool) *flagSensor { return &flagSensor{Base: Base{protoFlag}, on: on} }
func see() *seeSensor           { return &seeSensor{Base: Base{protoSee}} }

func ofType(t string) *typeFilter {
	return &typeFilter{Base: Base{protoType}, want: t}
}

func move() *moveActuator  { return &moveActuator{Base: Base{protoMove}} }
func shoot() *verbActuator { return &verbActuator{Base: Base{protoShoot}} }

func forward(v float64) *speedSelector {
	return &speedSelector{Base: Base{protoForward}, speed: v}
}

func once() *flagModifier {
	return &flagModifier{Base: Base{protoOnce}, apply: func(p *ModifierParams) { p.Once = true }}
}

func quickly() *flagModifier {
	return &flagModifier{Base: Base{protoQuick}, apply: func(p *ModifierParams) { p.Speed *= 2 }}
}

func rule(indent int, s Sensor, a Actuator, opts ...any) *Reflex {
	r := NewReflex()
	r.Indent = indent
	r.Sensor = s
	r.Actuator = a
	for _, o := range opts {
		switch o := o.(type) {
		case Filter:
			r.Filters = append(r.Filters, o)
		case Selector:
			r.Selector = o
		case Modifier:
			r.Modifiers = append(r.Modifiers, o)
		}
	}
	return r
}
