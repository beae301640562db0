package tiles

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/nav"
	"github.com/pthm-cable/whendo/sense"
)

var selectorMakers = map[string]maker{
	"toward":  newToward,
	"away":    newAway,
	"avoid":   newAvoid,
	"wander":  newWander,
	"circle":  newCircle,
	"path":    newPath,
	"forward": newForward,
	"turn":    newTurn,
	"heading": newHeading,
	"gamepad": newGamePadSelector,
	"freeze":  newFreeze,
	"auto":    newAuto,
}

// turning reports whether the rule's actuator only rotates the actor.
func turning(r *brain.Reflex) bool {
	return r.Actuator != nil && r.Actuator.Proto().Is(category.ActuatorTurn)
}

// steer requests travel along dir, or a heading for turn actuators. Heading
// modifiers are applied first.
func steer(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet, dir r3.Vec) {
	dir, _ = r.ModifyHeading(dir, f.Actor.Heading())
	dir = flat(dir)
	if dir == (r3.Vec{}) {
		return
	}
	if turning(r) {
		set.Add(f.Pools.Heading(headingOf(dir)))
		return
	}
	set.Add(f.Pools.Velocity(r3.Scale(moveSpeed(f, r), dir)))
}

// climb adds a vertical request when the rule says up or down and the
// actor can leave the ground.
func climb(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet) {
	p := r.ModifierParams()
	caps := f.Actor.Capabilities()
	if !p.HasVertical || caps.MaxVerticalSpeed <= 0 {
		return
	}
	set.Add(f.Pools.VerticalSpeed(min(caps.MaxVerticalSpeed, caps.MaxVerticalSpeed*p.Speed) * p.Vertical))
}

// toward heads for the nearest target.
type toward struct{ brain.Base }

func newToward(p *brain.Prototype) (brain.Element, error) {
	return &toward{brain.Base{P: p}}, nil
}

func (s *toward) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	s.compose(f, r, set)
	return set
}

func (*toward) compose(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet) bool {
	t := r.TargetSet.Nearest()
	if t == nil {
		return false
	}
	dir := r3.Sub(t.Position, f.Actor.Position())
	if turning(r) {
		steer(f, r, set, dir)
		return true
	}
	if _, ok := r.ModifyHeading(dir, f.Actor.Heading()); ok {
		steer(f, r, set, dir)
	} else {
		set.Add(f.Pools.TargetLocation(t.Position, moveSpeed(f, r)))
	}
	climb(f, r, set)
	return true
}

// away flees the nearest target.
type away struct{ brain.Base }

func newAway(p *brain.Prototype) (brain.Element, error) {
	return &away{brain.Base{P: p}}, nil
}

func (*away) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	if t := r.TargetSet.Nearest(); t != nil {
		steer(f, r, set, r3.Scale(-1, r3.Sub(t.Position, f.Actor.Position())))
		climb(f, r, set)
	}
	return set
}

// avoid swerves around the nearest target within the avoid distance,
// passing on the side the actor is already biased towards.
type avoid struct{ brain.Base }

func newAvoid(p *brain.Prototype) (brain.Element, error) {
	return &avoid{brain.Base{P: p}}, nil
}

func (*avoid) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	t := r.TargetSet.Nearest()
	if t == nil || t.Range > tuning.avoidDistance {
		return set
	}
	fwd := f.Forward()
	to := flat(r3.Sub(t.Position, f.Actor.Position()))
	// Perpendicular to the obstacle direction, on the side of our heading.
	side := r3.Vec{X: -to.Y, Y: to.X}
	if r3.Dot(side, fwd) < 0 {
		side = r3.Scale(-1, side)
	}
	// Closer obstacles push harder away from their centre.
	push := 1 - t.Range/tuning.avoidDistance
	dir := flat(r3.Add(side, r3.Scale(-push, to)))
	set.Add(f.Pools.Avoid(t.Position, r3.Scale(moveSpeed(f, r), dir)))
	return set
}

// wander roams between random passable points near the actor, picking a
// new one on arrival or after a timeout.
type wander struct {
	brain.Base
	goal   r3.Vec
	has    bool
	picked float64
}

func newWander(p *brain.Prototype) (brain.Element, error) {
	return &wander{Base: brain.Base{P: p}}, nil
}

func (s *wander) ResetState() {
	s.has = false
	s.goal = r3.Vec{}
	s.picked = 0
}

func (s *wander) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	s.compose(f, r, set)
	return set
}

func (s *wander) compose(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet) {
	pos := f.Actor.Position()
	arrived := s.has && r3.Norm(flat3(r3.Sub(s.goal, pos))) <= f.Actor.Radius()+tuning.arrive
	if !s.has || arrived || f.Time-s.picked >= tuning.wanderTimeout {
		s.pick(f, pos)
	}
	if !s.has {
		return
	}
	if turning(r) {
		steer(f, r, set, r3.Sub(s.goal, pos))
		return
	}
	set.Add(f.Pools.TargetLocation(s.goal, moveSpeed(f, r)))
	climb(f, r, set)
}

// pick draws up to wanderAttempts points uniformly in a disc and keeps the
// first one the actor's domain allows. On failure the old goal stays.
func (s *wander) pick(f *brain.Frame, pos r3.Vec) {
	domain := f.Actor.Capabilities().Domain
	for range max(1, tuning.wanderAttempts) {
		a := f.Rand.Float64() * 2 * math.Pi
		d := tuning.wanderRadius * math.Sqrt(f.Rand.Float64())
		c := r3.Vec{X: pos.X + d*math.Cos(a), Y: pos.Y + d*math.Sin(a), Z: pos.Z}
		if brain.Passable(f.Terrain, domain, c) {
			s.goal = c
			s.has = true
			s.picked = f.Time
			return
		}
	}
	// Retry next tick rather than waiting out the timeout.
	s.picked = f.Time - tuning.wanderTimeout
}

// flat3 zeroes the vertical component without normalising.
func flat3(v r3.Vec) r3.Vec {
	v.Z = 0
	return v
}

// circle orbits the nearest target. The radius grows while the path ahead
// is blocked or unsuitable, and shrinks back towards the base radius over
// time once clear.
type circle struct {
	brain.Base
	base   float64
	radius float64
}

func newCircle(p *brain.Prototype) (brain.Element, error) {
	return &circle{Base: brain.Base{P: p}, base: p.Params.Float("radius", 0)}, nil
}

func (s *circle) ResetState() { s.radius = 0 }

func (s *circle) baseRadius() float64 {
	b := s.base
	if b <= 0 {
		b = tuning.orbitRadius
	}
	return max(tuning.orbitMin, min(b, tuning.orbitMax))
}

func (s *circle) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	t := r.TargetSet.Nearest()
	if t == nil {
		return set
	}
	base := s.baseRadius()
	if s.radius == 0 {
		s.radius = base
	}

	pos := f.Actor.Position()
	center := t.Position
	lead := tuning.orbitLead
	if clockwise(r) {
		lead = -lead
	}
	goal := orbitPoint(center, pos, s.radius, lead)

	blocked := !brain.Passable(f.Terrain, f.Actor.Capabilities().Domain, goal)
	if !blocked && f.Terrain != nil {
		blocked = f.Terrain.Blocked(pos, goal, f.Actor.Radius())
	}
	if blocked {
		s.radius = min(s.radius+tuning.orbitExpand, tuning.orbitMax)
		goal = orbitPoint(center, pos, s.radius, lead)
	} else if s.radius > base {
		s.radius = max(base, s.radius-tuning.orbitContract*f.DT)
	}

	if turning(r) {
		steer(f, r, set, r3.Sub(goal, pos))
		return set
	}
	set.Add(f.Pools.TargetLocation(goal, moveSpeed(f, r)))
	climb(f, r, set)
	return set
}

// orbitPoint returns the point on the circle of the given radius around
// center, lead radians ahead of pos.
func orbitPoint(center, pos r3.Vec, radius, lead float64) r3.Vec {
	off := r3.Sub(pos, center)
	a := math.Atan2(off.Y, off.X) + lead
	return r3.Vec{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a), Z: pos.Z}
}

// path follows the waypoint graph, restricted to one colour when the rule
// has a path colour modifier.
type path struct {
	brain.Base
	follow nav.Follower
	ended  bool
}

func newPath(p *brain.Prototype) (brain.Element, error) {
	s := &path{Base: brain.Base{P: p}}
	s.follow.Reset()
	return s, nil
}

func (s *path) ResetState() {
	s.follow.Reset()
	s.ended = false
}

// Ended reports whether the last step reached a dead end.
func (s *path) Ended() bool { return s.ended }

func (s *path) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	s.ended = false
	if f.World == nil {
		return set
	}
	g := f.World.Paths()
	if g == nil {
		return set
	}
	color := sense.NoColor
	if p := r.ModifierParams(); p.HasPathColor {
		color = p.PathColor
	}
	pos := f.Actor.Position()
	goal, atEnd, ok := s.follow.Step(g, pos, f.Forward(), color, tuning.pathArrive, f.Rand)
	if !ok {
		return set
	}
	s.ended = atEnd
	if turning(r) {
		steer(f, r, set, r3.Sub(goal, pos))
		return set
	}
	set.Add(f.Pools.TargetLocation(goal, moveSpeed(f, r)))
	climb(f, r, set)
	return set
}

// forward drives along the current heading, or along a modifier's
// direction when one is present.
type forward struct{ brain.Base }

func newForward(p *brain.Prototype) (brain.Element, error) {
	return &forward{brain.Base{P: p}}, nil
}

func (s *forward) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	s.compose(f, r, set)
	return set
}

func (*forward) compose(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet) {
	if _, ok := r.ModifyHeading(f.Forward(), f.Actor.Heading()); ok {
		steer(f, r, set, f.Forward())
	} else if !turning(r) {
		set.Add(f.Pools.Speed(moveSpeed(f, r)))
	}
	climb(f, r, set)
}

// turn spins left or right at a fraction of the turn rate.
type turn struct {
	brain.Base
	sign float64
}

func newTurn(p *brain.Prototype) (brain.Element, error) {
	switch d := p.Params.String("direction", ""); d {
	case "left":
		return &turn{Base: brain.Base{P: p}, sign: 1}, nil
	case "right":
		return &turn{Base: brain.Base{P: p}, sign: -1}, nil
	default:
		return nil, fmt.Errorf("bad turn direction %q", d)
	}
}

func (s *turn) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	set.Add(f.Pools.TurnSpeed(s.sign * turnRate(f, r)))
	return set
}

// heading turns to face a compass direction.
type heading struct {
	brain.Base
	angle float64
}

func newHeading(p *brain.Prototype) (brain.Element, error) {
	name := p.Params.String("heading", "")
	d, ok := worldDirections[name]
	if !ok {
		return nil, fmt.Errorf("bad heading %q", name)
	}
	return &heading{Base: brain.Base{P: p}, angle: headingOf(d)}, nil
}

func (s *heading) ComposeActionSet(f *brain.Frame, _ *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	set.Add(f.Pools.Heading(s.angle))
	return set
}

// gamePadSelector drives from a stick. The d-pad steers relative to the
// actor like a car; analog sticks give an absolute world direction.
type gamePadSelector struct{ brain.Base }

func newGamePadSelector(p *brain.Prototype) (brain.Element, error) {
	return &gamePadSelector{brain.Base{P: p}}, nil
}

func (s *gamePadSelector) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	s.compose(f, r, set)
	return set
}

func (*gamePadSelector) compose(f *brain.Frame, r *brain.Reflex, set *motion.ActionSet) {
	if f.Input == nil {
		return
	}
	stick := stickOf(r)
	axis := f.Input.Pad.Sticks[stick]
	if !axis.Active(tuning.deadZone) {
		return
	}

	if stick == input.DPad {
		if axis.X != 0 {
			set.Add(f.Pools.TurnSpeed(-axis.X * turnRate(f, r)))
		}
		if axis.Y != 0 && !turning(r) {
			set.Add(f.Pools.Speed(axis.Y * moveSpeed(f, r)))
		}
		return
	}

	dir := r3.Vec{X: axis.X, Y: axis.Y}
	mag := min(1, r3.Norm(dir))
	dir = r3.Unit(dir)
	set.Add(f.Pools.Heading(headingOf(dir)))
	if !turning(r) {
		set.Add(f.Pools.Velocity(r3.Scale(mag*moveSpeed(f, r), dir)))
	}
}

// freeze holds the actor still.
type freeze struct{ brain.Base }

func newFreeze(p *brain.Prototype) (brain.Element, error) {
	return &freeze{brain.Base{P: p}}, nil
}

func (*freeze) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	if !turning(r) {
		set.Add(f.Pools.Velocity(r3.Vec{}))
	}
	set.Add(f.Pools.TurnSpeed(0))
	return set
}

// auto is the default for a movement rule with no selector: a modifier
// direction wins, then the nearest target, then wandering.
type auto struct {
	brain.Base
	toward  toward
	forward forward
	wander  wander
}

func newAuto(p *brain.Prototype) (brain.Element, error) {
	return &auto{Base: brain.Base{P: p}}, nil
}

func (s *auto) ResetState() { s.wander.ResetState() }

func (s *auto) ComposeActionSet(f *brain.Frame, r *brain.Reflex) *motion.ActionSet {
	set := f.Pools.Set()
	switch {
	case r.ModifierParams().HasDirection:
		s.forward.compose(f, r, set)
	case s.toward.compose(f, r, set):
	default:
		s.wander.compose(f, r, set)
	}
	return set
}
