package brain

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/sense"
)

// Ids of the selectors attached silently to movement rules that name none.
const (
	HiddenSelectorAuto    = "selector.hidden.auto"
	HiddenSelectorGamePad = "selector.hidden.gamepad"
)

// rememberSlack is added to the actor radius when deciding a remembered
// target has been reached.
const rememberSlack = 0.25

// Selection is the predicate deciding which world things a rule's sensor is
// shown at all.
type Selection struct {
	Me       bool // only the actor itself
	Dead     bool
	Squashed bool
	Missile  bool
}

// Selects reports whether thing passes the predicate for actor.
func (s Selection) Selects(actor, thing sense.Thing) bool {
	if !thing.Alive() || thing.Ignored() {
		return false
	}
	if (thing.ID() == actor.ID()) != s.Me {
		return false
	}
	return thing.Dead() == s.Dead && thing.Squashed() == s.Squashed && thing.Missile() == s.Missile
}

// Remembered is a steering target that outlives the condition that set it,
// such as a clicked destination.
type Remembered struct {
	Valid    bool
	Position r3.Vec
	Thing    sense.Thing // followed while alive, nil for a bare position
}

// Reflex is one WHEN/DO rule.
type Reflex struct {
	Sensor    Sensor
	Filters   []Filter
	Actuator  Actuator
	Selector  Selector
	Modifiers []Modifier

	// Indent nests the rule under the nearest preceding rule one level up.
	Indent int
	// Args holds free-form tile arguments such as say text.
	Args map[string]string

	// ActedOn is set when the actuator's effect took hold this tick. The
	// scheduler sets it for motion writes that win and verbs that perform;
	// collaborators may set it too.
	ActedOn bool
	// OnceCount counts consecutive acted-on ticks while the condition holds.
	OnceCount int

	TargetSet *sense.TargetSet

	// Derived by Fixup.
	index        int
	parent       int
	params       ModifierParams
	active       []Filter
	hiddenFilter Filter
	hiddenSel    Selector
	selector     Selector
	selection    Selection
	inverted     bool
	counting     bool
	sensesThings bool
	locomotion   bool

	// Per-tick state.
	actionSet   *motion.ActionSet
	evaluated   bool
	skipped     bool // left out of an input-only pass
	fired       bool
	steering    bool
	acted       bool
	condition   bool
	lastActions int
	lastTargets int
	remembered  Remembered
}

// NewReflex creates an empty rule.
func NewReflex() *Reflex {
	return &Reflex{TargetSet: sense.NewTargetSet(), parent: -1}
}

// Index is the rule's position, and motion priority, within its task.
func (r *Reflex) Index() int { return r.index }

// Parent returns the index of the enclosing rule, or -1 at the top level.
func (r *Reflex) Parent() int { return r.parent }

// Selection returns the thing predicate derived from the rule's filters.
func (r *Reflex) Selection() Selection { return r.selection }

// ModifierParams returns the parameters gathered from the modifiers.
func (r *Reflex) ModifierParams() *ModifierParams { return &r.params }

// EffectiveSelector returns the selector in use: the explicit one or a
// hidden default.
func (r *Reflex) EffectiveSelector() Selector { return r.selector }

// HiddenFilter returns the default filter attached for a filterless sensor.
func (r *Reflex) HiddenFilter() Filter { return r.hiddenFilter }

// ActiveFilters returns every filter taking part in evaluation, including a
// hidden default and excluding ignored extra comparisons.
func (r *Reflex) ActiveFilters() []Filter { return r.active }

// Locomotion reports whether the actuator moves or turns the actor.
func (r *Reflex) Locomotion() bool { return r.locomotion }

// Fired reports whether the rule's effective signal was true this tick.
func (r *Reflex) Fired() bool { return r.fired }

// MarkActedOn records that the rule's effect took hold.
func (r *Reflex) MarkActedOn() { r.ActedOn = true }

// Remember stores a steering target that persists after the condition
// goes false.
func (r *Reflex) Remember(pos r3.Vec, thing sense.Thing) {
	r.remembered = Remembered{Valid: true, Position: pos, Thing: thing}
}

// Forget drops the remembered target.
func (r *Reflex) Forget() { r.remembered = Remembered{} }

// Remembered returns the current remembered target.
func (r *Reflex) Remembered() Remembered { return r.remembered }

// ModifyHeading passes dir through every heading modifier in order and
// reports whether any applied.
func (r *Reflex) ModifyHeading(dir r3.Vec, heading float64) (r3.Vec, bool) {
	applied := false
	for _, m := range r.Modifiers {
		if hm, ok := m.(HeadingModifier); ok {
			dir = hm.ModifyHeading(dir, heading)
			applied = true
		}
	}
	return dir, applied
}

// Fixup recomputes everything derived from the tiles: modifier params,
// selection flags, hidden defaults and the filter list. It is idempotent.
func (r *Reflex) Fixup(reg Registry) {
	if r.TargetSet == nil {
		r.TargetSet = sense.NewTargetSet()
	}

	r.params.Reset()
	for _, m := range r.Modifiers {
		m.GatherParams(&r.params)
	}

	r.selection = Selection{}
	r.inverted = false
	r.counting = false
	r.sensesThings = false
	r.active = r.active[:0]

	if r.Sensor != nil {
		r.sensesThings = r.Sensor.Proto().Is(category.SensorObject)
	}

	comparisons := 0
	for _, flt := range r.Filters {
		p := flt.Proto()
		if p.Is(category.FilterComparison) {
			comparisons++
			if comparisons > 1 {
				slog.Debug("ignoring extra comparison filter", "tile", p.ID)
				continue
			}
			if r.sensesThings {
				r.counting = true
			}
		}
		switch {
		case p.Is(category.FilterNot):
			r.inverted = true
		case p.Is(category.FilterCount):
			r.counting = true
		case p.Is(category.FilterMe):
			r.selection.Me = true
		case p.Is(category.FilterDead):
			r.selection.Dead = true
		case p.Is(category.FilterSquashed):
			r.selection.Squashed = true
		case p.Is(category.FilterMissile):
			r.selection.Missile = true
		}
		r.active = append(r.active, flt)
	}

	r.hiddenFilter = r.fixupHiddenFilter(reg)
	if r.hiddenFilter != nil {
		r.active = append(r.active, r.hiddenFilter)
	}

	r.locomotion = false
	if a := r.Actuator; a != nil {
		p := a.Proto()
		r.locomotion = p.Is(category.ActuatorMovement) || p.Is(category.ActuatorTurn)
	}

	r.hiddenSel = r.fixupHiddenSelector(reg)
	r.selector = r.Selector
	if r.selector == nil {
		r.selector = r.hiddenSel
	}
}

func (r *Reflex) fixupHiddenFilter(reg Registry) Filter {
	if r.Sensor == nil || len(r.Filters) > 0 || reg == nil {
		return nil
	}
	id := r.Sensor.Proto().DefaultFilter
	if id == "" {
		return nil
	}
	if r.hiddenFilter != nil && r.hiddenFilter.Proto().ID == id {
		return r.hiddenFilter
	}
	flt, _ := reg.Filter(id).Clone().(Filter)
	return flt
}

// fixupHiddenSelector picks the default for a movement rule without a
// selector. Device direction beats everything; otherwise the auto selector
// prefers a modifier direction, then the nearest target, then wandering.
func (r *Reflex) fixupHiddenSelector(reg Registry) Selector {
	if r.Selector != nil || !r.locomotion || reg == nil {
		return nil
	}
	id := HiddenSelectorAuto
	if r.whenCategories().Has(category.ProvidesDirection) {
		id = HiddenSelectorGamePad
	}
	p := reg.Selector(id)
	if p == nil || !r.Actuator.Proto().Accepts(p) {
		return nil
	}
	if r.hiddenSel != nil && r.hiddenSel.Proto() == p {
		return r.hiddenSel
	}
	sel, _ := p.Clone().(Selector)
	return sel
}

// whenCategories returns what the sensor and filters contribute.
func (r *Reflex) whenCategories() category.Set {
	var m category.Mask
	if r.Sensor != nil {
		p := r.Sensor.Proto()
		m.Contribute(p.Categories, p.Negations)
	}
	for _, flt := range r.Filters {
		p := flt.Proto()
		m.Contribute(p.Categories, p.Negations)
	}
	return m.Categories()
}

// Offer runs t through every active filter and keeps it if all accept. The
// caller's reference to t is consumed.
func (r *Reflex) Offer(t *sense.Target) bool {
	defer t.Release()
	for _, flt := range r.active {
		if !flt.MatchTarget(r, t) {
			return false
		}
	}
	return r.TargetSet.Add(t)
}

// Conclude sets the rule's verdict. base is the sensor's own signal; count
// filters replace it with true so they can judge the narrowed set
// themselves. A negating filter inverts the final result exactly once.
func (r *Reflex) Conclude(f *Frame, base bool) {
	ts := r.TargetSet
	if r.sensesThings && !ts.HasParam {
		ts.Param = float64(ts.Count())
		ts.HasParam = true
	}
	v := base || r.counting
	if v {
		for _, flt := range r.active {
			if !flt.MatchAction(f, r) {
				v = false
				break
			}
		}
	}
	if r.inverted {
		v = !v
	}
	ts.AnyAction = v
}

// Selects applies the rule's selection predicate for the frame's actor.
func (r *Reflex) Selects(f *Frame, thing sense.Thing) bool {
	return r.selection.Selects(f.Actor, thing)
}

func (r *Reflex) clearTick() {
	r.TargetSet.Clear()
	r.evaluated = false
	r.skipped = false
	r.fired = false
	r.steering = false
}

// evaluate runs the WHEN side and, if the rule fires, its selector.
func (r *Reflex) evaluate(f *Frame) {
	r.evaluated = true
	if s := r.Sensor; s == nil {
		r.Conclude(f, true)
	} else {
		s.StartUpdate(f)
		if tp, ok := s.(ThingPerceiver); ok && f.World != nil {
			origin := f.Actor.Position()
			f.World.Things(func(th sense.Thing) bool {
				if !r.selection.Selects(f.Actor, th) {
					return true
				}
				d := r3.Sub(th.Position(), origin)
				rng := r3.Norm(d)
				var dir r3.Vec
				if rng > 0 {
					dir = r3.Scale(1/rng, d)
				}
				tp.ThingUpdate(f, th, dir, rng)
				return true
			})
		}
		s.FinishUpdate(f)
		s.ComposeSensorTargetSet(f, r)
	}

	r.fired = r.TargetSet.AnyAction && !(r.params.Once && r.OnceCount > 0)
	if !r.TargetSet.AnyAction {
		r.steerRemembered(f)
		return
	}
	if r.fired && r.Actuator != nil && r.selector != nil {
		r.attach(r.selector.ComposeActionSet(f, r))
	}
}

// steerRemembered keeps a movement rule heading for its remembered target
// when it cannot fire. This is steering only: it never counts as acted on
// and never enables children.
func (r *Reflex) steerRemembered(f *Frame) {
	if !r.remembered.Valid || !r.locomotion {
		return
	}
	pos := r.remembered.Position
	if th := r.remembered.Thing; th != nil {
		if !th.Alive() {
			r.Forget()
			return
		}
		pos = th.Position()
	}
	origin := f.Actor.Position()
	if r3.Norm(r3.Sub(pos, origin)) <= f.Actor.Radius()+rememberSlack {
		r.Forget()
		return
	}

	set := f.Pools.Set()
	if r.Actuator.Proto().Is(category.ActuatorMovement) {
		speed := f.Actor.Capabilities().MaxSpeed * r.params.Speed
		set.Add(f.Pools.TargetLocation(pos, speed))
	} else {
		d := r3.Sub(pos, origin)
		set.Add(f.Pools.Heading(math.Atan2(d.Y, d.X)))
	}
	r.attach(set)
	r.steering = true
}

func (r *Reflex) attach(set *motion.ActionSet) {
	if r.actionSet != nil {
		r.actionSet.Release()
	}
	r.actionSet = set
	r.Actuator.AttachActionSet(set)
}

// act runs the DO side for a fired or steering rule.
func (r *Reflex) act(f *Frame) {
	switch {
	case r.fired:
		f.constraints |= r.params.Constraints
		if r.Actuator == nil {
			return
		}
		r.Actuator.Update(f, r)
	case r.steering:
		r.Actuator.Update(f, r)
		r.ActedOn = false
	}
}

// ApplyMotion writes the attached action set into the actor's desired
// motion and marks the rule acted on if any write won.
func (r *Reflex) ApplyMotion(f *Frame) bool {
	if r.actionSet.Apply(f.Actor.Motion(), r.index) {
		r.ActedOn = true
		return true
	}
	return false
}

// settle does the end-of-tick bookkeeping for once rules. The count grows
// only on acted-on ticks with the condition true and resets as soon as the
// condition goes false. A rule skipped by an input-only pass keeps its
// count, since its condition was never tested.
func (r *Reflex) settle() {
	r.acted = r.ActedOn
	if r.params.Once && !r.skipped {
		if r.TargetSet.AnyAction {
			if r.ActedOn {
				r.OnceCount++
			}
		} else {
			r.OnceCount = 0
		}
	}
	r.ActedOn = false
}

// release returns the tick's pooled actions and targets, keeping only the
// counts for Snapshot.
func (r *Reflex) release() {
	r.lastActions = r.actionSet.Len()
	r.lastTargets = r.TargetSet.Count()
	r.condition = r.TargetSet.AnyAction
	if r.actionSet != nil {
		r.actionSet.Release()
		r.actionSet = nil
		r.Actuator.AttachActionSet(nil)
	}
	r.TargetSet.Clear()
}

// Reset clears all runtime state, as when the owning task is switched.
func (r *Reflex) Reset() {
	r.release()
	r.clearTick()
	r.ActedOn = false
	r.acted = false
	r.condition = false
	r.OnceCount = 0
	r.lastActions = 0
	r.lastTargets = 0
	r.Forget()
	r.eachElement(func(e Element) {
		if s, ok := e.(Stateful); ok {
			s.ResetState()
		}
	})
}

func (r *Reflex) eachElement(fn func(Element)) {
	if r.Sensor != nil {
		fn(r.Sensor)
	}
	for _, f := range r.Filters {
		fn(f)
	}
	if r.hiddenFilter != nil {
		fn(r.hiddenFilter)
	}
	if r.Actuator != nil {
		fn(r.Actuator)
	}
	if r.Selector != nil {
		fn(r.Selector)
	}
	if r.hiddenSel != nil {
		fn(r.hiddenSel)
	}
	for _, m := range r.Modifiers {
		fn(m)
	}
}

// State is an inspection snapshot of one rule after a tick.
type State struct {
	Index     int
	Indent    int
	Parent    int
	Evaluated bool
	Condition bool
	Fired     bool
	Steering  bool
	ActedOn   bool
	OnceCount int
	Targets   int
	Actions   int
}

// Snapshot reports what the rule did in the last tick.
func (r *Reflex) Snapshot() State {
	return State{
		Index:     r.index,
		Indent:    r.Indent,
		Parent:    r.parent,
		Evaluated: r.evaluated,
		Condition: r.condition,
		Fired:     r.fired,
		Steering:  r.steering,
		ActedOn:   r.acted,
		OnceCount: r.OnceCount,
		Targets:   r.lastTargets,
		Actions:   r.lastActions,
	}
}
