package motion

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Resetter is implemented by pooled values.
type Resetter interface {
	Reset()
}

// Pool is a freelist of *T. Every value handed out by Alloc has been Reset,
// so a recycled value is indistinguishable from a fresh one.
type Pool[T any, P interface {
	*T
	Resetter
}] struct {
	free      []P
	allocated int
}

// Alloc returns a reset value, reusing a freed one when available.
func (p *Pool[T, P]) Alloc() P {
	n := len(p.free)
	if n == 0 {
		v := P(new(T))
		v.Reset()
		p.allocated++
		return v
	}
	v := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	v.Reset()
	return v
}

// Free returns v to the pool.
func (p *Pool[T, P]) Free(v P) {
	if v == nil {
		return
	}
	v.Reset()
	p.free = append(p.free, v)
}

// Allocated returns how many distinct values the pool has created.
func (p *Pool[T, P]) Allocated() int { return p.allocated }

// Available returns how many values are waiting on the freelist.
func (p *Pool[T, P]) Available() int { return len(p.free) }

// Pools holds one freelist per action kind. Each brain owns its own Pools;
// they are not safe for concurrent use.
type Pools struct {
	speed    Pool[SpeedAction, *SpeedAction]
	velocity Pool[VelocityAction, *VelocityAction]
	target   Pool[TargetLocationAction, *TargetLocationAction]
	turn     Pool[TurnSpeedAction, *TurnSpeedAction]
	heading  Pool[HeadingAction, *HeadingAction]
	vertical Pool[VerticalSpeedAction, *VerticalSpeedAction]
	altitude Pool[AltitudeAction, *AltitudeAction]
	avoid    Pool[AvoidAction, *AvoidAction]
	sets     []*ActionSet
}

// NewPools creates empty pools.
func NewPools() *Pools {
	return &Pools{}
}

func (p *Pools) Speed(speed float64) *SpeedAction {
	a := p.speed.Alloc()
	a.Speed = speed
	return a
}

func (p *Pools) Velocity(v r3.Vec) *VelocityAction {
	a := p.velocity.Alloc()
	a.Velocity = v
	return a
}

func (p *Pools) TargetLocation(target r3.Vec, speed float64) *TargetLocationAction {
	a := p.target.Alloc()
	a.Target = target
	a.Speed = speed
	return a
}

func (p *Pools) TurnSpeed(rate float64) *TurnSpeedAction {
	a := p.turn.Alloc()
	a.Rate = rate
	return a
}

func (p *Pools) Heading(heading float64) *HeadingAction {
	a := p.heading.Alloc()
	a.Heading = heading
	return a
}

func (p *Pools) VerticalSpeed(speed float64) *VerticalSpeedAction {
	a := p.vertical.Alloc()
	a.Speed = speed
	return a
}

func (p *Pools) Altitude(alt float64) *AltitudeAction {
	a := p.altitude.Alloc()
	a.Altitude = alt
	return a
}

func (p *Pools) Avoid(obstacle, velocity r3.Vec) *AvoidAction {
	a := p.avoid.Alloc()
	a.Obstacle = obstacle
	a.Velocity = velocity
	return a
}

// Free returns a single action to its freelist.
func (p *Pools) Free(a Action) {
	if a != nil {
		a.release(p)
	}
}

// Stats reports allocated and available counts per kind.
func (p *Pools) Stats() (allocated, available [KindCount]int) {
	allocated = [KindCount]int{
		p.speed.Allocated(), p.velocity.Allocated(), p.target.Allocated(), p.turn.Allocated(),
		p.heading.Allocated(), p.vertical.Allocated(), p.altitude.Allocated(), p.avoid.Allocated(),
	}
	available = [KindCount]int{
		p.speed.Available(), p.velocity.Available(), p.target.Available(), p.turn.Available(),
		p.heading.Available(), p.vertical.Available(), p.altitude.Available(), p.avoid.Available(),
	}
	return allocated, available
}

// Set borrows an empty action set.
func (p *Pools) Set() *ActionSet {
	n := len(p.sets)
	if n == 0 {
		return &ActionSet{pools: p}
	}
	s := p.sets[n-1]
	p.sets = p.sets[:n-1]
	return s
}

// ActionSet is the list of requests one selector produced for one rule in
// one tick.
type ActionSet struct {
	actions []Action
	pools   *Pools
}

// Add appends an action.
func (s *ActionSet) Add(a Action) {
	s.actions = append(s.actions, a)
}

// Len returns the number of actions.
func (s *ActionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.actions)
}

// At returns the i-th action.
func (s *ActionSet) At(i int) Action {
	return s.actions[i]
}

// Apply writes every action into d and reports whether any write won its
// group.
func (s *ActionSet) Apply(d *Desired, owner int) bool {
	if s == nil {
		return false
	}
	won := false
	for _, a := range s.actions {
		if a.Apply(d, owner) {
			won = true
		}
	}
	return won
}

// Release returns every action and the set itself to the pools.
func (s *ActionSet) Release() {
	if s == nil {
		return
	}
	for i, a := range s.actions {
		s.pools.Free(a)
		s.actions[i] = nil
	}
	s.actions = s.actions[:0]
	s.pools.sets = append(s.pools.sets, s)
}
