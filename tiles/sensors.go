package tiles

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/sense"
)

var sensorMakers = map[string]maker{
	"always":   newAlways,
	"see":      newPerceiver(perceiveSight),
	"hear":     newPerceiver(perceiveHearing),
	"bump":     newPerceiver(perceiveBump),
	"timer":    newTimer,
	"pointer":  newPointer,
	"gamepad":  newGamePad,
	"keyboard": newKeyboard,
	"score":    newScore,
}

// always is true every tick.
type always struct{ brain.Base }

func newAlways(p *brain.Prototype) (brain.Element, error) {
	return &always{brain.Base{P: p}}, nil
}

func (*always) StartUpdate(*brain.Frame)  {}
func (*always) FinishUpdate(*brain.Frame) {}

func (*always) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	r.Conclude(f, true)
}

type perceiveMode uint8

const (
	perceiveSight perceiveMode = iota
	perceiveHearing
	perceiveBump
)

type seen struct {
	thing sense.Thing
	dir   r3.Vec
	rng   float64
}

// perceiver buffers the world things it accepts during the thing pass and
// offers them as targets afterwards.
type perceiver struct {
	brain.Base
	mode     perceiveMode
	maxRange float64 // 0 uses the configured default
	buf      []seen
}

func newPerceiver(mode perceiveMode) maker {
	return func(p *brain.Prototype) (brain.Element, error) {
		rng := p.Params.Float("range", 0)
		if rng < 0 {
			return nil, fmt.Errorf("negative range %v", rng)
		}
		return &perceiver{Base: brain.Base{P: p}, mode: mode, maxRange: rng}, nil
	}
}

func (s *perceiver) StartUpdate(*brain.Frame) {
	clear(s.buf)
	s.buf = s.buf[:0]
}

func (s *perceiver) ThingUpdate(f *brain.Frame, th sense.Thing, dir r3.Vec, rng float64) {
	switch s.mode {
	case perceiveSight:
		limit := s.maxRange
		if limit == 0 {
			limit = tuning.seeRange
		}
		if rng > limit {
			return
		}
		if tuning.seeCosHalfFOV > -1 && rng > 0 && r3.Dot(dir, f.Forward()) < tuning.seeCosHalfFOV {
			return
		}
	case perceiveHearing:
		limit := s.maxRange
		if limit == 0 {
			limit = tuning.hearRange
		}
		if rng > limit {
			return
		}
	case perceiveBump:
		if rng > f.Actor.Radius()+th.Radius()+tuning.bumpSlack {
			return
		}
	}
	s.buf = append(s.buf, seen{thing: th, dir: dir, rng: rng})
}

func (s *perceiver) FinishUpdate(*brain.Frame) {}

func (s *perceiver) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	origin := f.Actor.Position()
	for _, sn := range s.buf {
		r.Offer(f.Targets.Sense(origin, sn.thing, f.Time))
	}
	r.Conclude(f, !r.TargetSet.Empty())
}

// timer fires once per period, where the period is the sum of the rule's
// timer filters.
type timer struct {
	brain.Base
	next    float64
	started bool
}

func newTimer(p *brain.Prototype) (brain.Element, error) {
	return &timer{Base: brain.Base{P: p}}, nil
}

func (*timer) StartUpdate(*brain.Frame)  {}
func (*timer) FinishUpdate(*brain.Frame) {}

func (s *timer) ResetState() {
	s.next = 0
	s.started = false
}

func (s *timer) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	period := sumValues(r, category.FilterTimer)
	if !s.started {
		s.next = f.Time + period
		s.started = true
	}
	fire := f.Time >= s.next
	if fire {
		s.next = f.Time + period
	}
	r.Conclude(f, fire)
}

// sumValues adds the values of every active filter carrying cat.
func sumValues(r *brain.Reflex, cat category.Category) float64 {
	total := 0.0
	for _, flt := range r.ActiveFilters() {
		if v, ok := flt.(brain.Valuer); ok && flt.Proto().Is(cat) {
			total += v.Value()
		}
	}
	return total
}

// pointer senses the mouse or a touch. The target is the thing under the
// pointer, or the bare world position. Movement rules remember the target
// so the actor keeps going after release.
type pointer struct{ brain.Base }

func newPointer(p *brain.Prototype) (brain.Element, error) {
	return &pointer{brain.Base{P: p}}, nil
}

func (*pointer) StartUpdate(*brain.Frame)  {}
func (*pointer) FinishUpdate(*brain.Frame) {}

func (s *pointer) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	if f.Input == nil || !f.Input.Pointer.Valid {
		r.Conclude(f, false)
		return
	}
	ptr := f.Input.Pointer
	origin := f.Actor.Position()

	var hit sense.Thing
	if ptr.HitID != 0 && f.World != nil {
		f.World.Things(func(th sense.Thing) bool {
			if th.ID() == ptr.HitID {
				hit = th
				return false
			}
			return true
		})
	}
	var t *sense.Target
	if hit != nil {
		t = f.Targets.Sense(origin, hit, f.Time)
	} else {
		t = f.Targets.Point(origin, ptr.World, f.Time)
	}
	pos := t.Position
	accepted := r.Offer(t)
	r.Conclude(f, accepted)

	if r.TargetSet.AnyAction && r.Locomotion() {
		r.Remember(pos, hit)
	}
}

// pointerButton returns the button chosen by the rule's button filter.
func pointerButton(r *brain.Reflex) input.PointerButton {
	for _, flt := range r.ActiveFilters() {
		if b, ok := flt.(interface{ Button() input.PointerButton }); ok {
			return b.Button()
		}
	}
	return input.LeftButton
}

// gamePad is true while the input state exists; its stick and button
// filters decide the rest.
type gamePad struct{ brain.Base }

func newGamePad(p *brain.Prototype) (brain.Element, error) {
	return &gamePad{brain.Base{P: p}}, nil
}

func (*gamePad) StartUpdate(*brain.Frame)  {}
func (*gamePad) FinishUpdate(*brain.Frame) {}

func (*gamePad) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	r.Conclude(f, f.Input != nil)
}

// stickOf returns the stick chosen by the rule's stick filter.
func stickOf(r *brain.Reflex) input.Stick {
	for _, flt := range r.ActiveFilters() {
		if s, ok := flt.(interface{ Stick() input.Stick }); ok {
			return s.Stick()
		}
	}
	return input.LeftStick
}

// keyboard is true while any key is down, unless a key filter narrows it.
type keyboard struct{ brain.Base }

func newKeyboard(p *brain.Prototype) (brain.Element, error) {
	return &keyboard{brain.Base{P: p}}, nil
}

func (*keyboard) StartUpdate(*brain.Frame)  {}
func (*keyboard) FinishUpdate(*brain.Frame) {}

func (*keyboard) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	if f.Input == nil {
		r.Conclude(f, false)
		return
	}
	base := false
	for _, flt := range r.ActiveFilters() {
		if flt.Proto().Is(category.FilterKey) {
			base = true
			break
		}
	}
	if !base {
		for _, k := range f.Input.Keys {
			if k.IsDown() {
				base = true
				break
			}
		}
	}
	r.Conclude(f, base)
}

// score reads a score bucket into the target set's param. Without a
// comparison it is true while the score is positive.
type score struct{ brain.Base }

func newScore(p *brain.Prototype) (brain.Element, error) {
	return &score{brain.Base{P: p}}, nil
}

func (*score) StartUpdate(*brain.Frame)  {}
func (*score) FinishUpdate(*brain.Frame) {}

func (*score) ComposeSensorTargetSet(f *brain.Frame, r *brain.Reflex) {
	bucket := DefaultBucket
	compare := false
	for _, flt := range r.ActiveFilters() {
		if b, ok := flt.(interface{ Bucket() string }); ok {
			bucket = b.Bucket()
		}
		if flt.Proto().Is(category.FilterComparison) {
			compare = true
		}
	}
	v := 0
	if f.World != nil {
		v = f.World.Score(bucket)
	}
	r.TargetSet.Param = float64(v)
	r.TargetSet.HasParam = true
	r.Conclude(f, compare || v > 0)
}

// DefaultBucket is the score bucket used when a rule names none.
const DefaultBucket = "score"
