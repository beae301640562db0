package sense

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Target is one perceived candidate: a thing or a bare position. Targets are
// reference counted because the same target may sit in several sets.
type Target struct {
	Thing     Thing // nil for bare positions
	Position  r3.Vec
	Direction r3.Vec // unit vector from the perceiving actor
	Range     float64
	Class     Classification
	SensedAt  float64

	refs int
	pool *Pool
}

type targetKey struct {
	id  uint64
	pos r3.Vec
}

func (t *Target) key() targetKey {
	if t.Thing != nil {
		return targetKey{id: t.Thing.ID()}
	}
	return targetKey{pos: t.Position}
}

// ID returns the thing ID, or 0 for a bare position.
func (t *Target) ID() uint64 {
	if t.Thing == nil {
		return 0
	}
	return t.Thing.ID()
}

// Retain adds a reference.
func (t *Target) Retain() *Target {
	t.refs++
	return t
}

// Release drops a reference; the last release returns the target to its pool.
func (t *Target) Release() {
	t.refs--
	if t.refs <= 0 && t.pool != nil {
		t.pool.put(t)
	}
}

// Pool is a freelist of targets, owned by one evaluation context.
type Pool struct {
	free      []*Target
	allocated int
}

// NewPool creates an empty target pool.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a zeroed target holding one reference.
func (p *Pool) Get() *Target {
	var t *Target
	if n := len(p.free); n > 0 {
		t = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		t = &Target{}
		p.allocated++
	}
	*t = Target{refs: 1, pool: p}
	return t
}

// Sense fills a pooled target for a thing seen from origin.
func (p *Pool) Sense(origin r3.Vec, thing Thing, now float64) *Target {
	t := p.Get()
	t.Thing = thing
	t.Position = thing.Position()
	t.Class = thing.Classification()
	t.SensedAt = now
	t.setGeometry(origin)
	return t
}

// Point fills a pooled target for a bare position.
func (p *Pool) Point(origin, pos r3.Vec, now float64) *Target {
	t := p.Get()
	t.Position = pos
	t.SensedAt = now
	t.setGeometry(origin)
	return t
}

func (t *Target) setGeometry(origin r3.Vec) {
	delta := r3.Sub(t.Position, origin)
	t.Range = r3.Norm(delta)
	if t.Range > 0 {
		t.Direction = r3.Scale(1/t.Range, delta)
	} else {
		t.Direction = r3.Vec{}
	}
}

func (p *Pool) put(t *Target) {
	*t = Target{}
	p.free = append(p.free, t)
}

// Allocated returns how many targets the pool has created.
func (p *Pool) Allocated() int { return p.allocated }

// Available returns how many targets are waiting on the freelist.
func (p *Pool) Available() int { return len(p.free) }

// compareTargets orders by range, then by identity so ties are
// deterministic.
func compareTargets(a, b *Target) int {
	if c := cmp.Compare(a.Range, b.Range); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ID(), b.ID()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position.X, b.Position.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position.Y, b.Position.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.Position.Z, b.Position.Z)
}

// sortTargets sorts in place without allocating.
func sortTargets(ts []*Target) {
	slices.SortFunc(ts, compareTargets)
}
