package nav

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/sense"
)

// Follower is the per-rule state of an actor travelling along a path.
type Follower struct {
	edge   int
	toward int
	color  sense.Color
	active bool

	scratch []int
}

// Reset forgets the current edge; the next Step reacquires the nearest one.
func (f *Follower) Reset() {
	f.active = false
	f.edge = -1
	f.toward = -1
}

// Active reports whether an edge has been acquired.
func (f *Follower) Active() bool {
	return f.active
}

// Step advances the follower and returns the waypoint to head for. atEnd is
// set on the tick the follower reaches a dead end and turns around.
func (f *Follower) Step(g *Graph, pos, forward r3.Vec, color sense.Color, arrive float64, rng *rand.Rand) (target r3.Vec, atEnd, ok bool) {
	if !f.active || f.color != color || f.edge >= len(g.edges) {
		if !f.acquire(g, pos, forward, color) {
			return r3.Vec{}, false, false
		}
	}

	goal := g.nodes[f.toward].Position
	if r3.Norm(r3.Sub(goal, pos)) > arrive {
		return goal, false, true
	}

	// Arrived: pick the next edge out of this node.
	f.scratch = g.exits(f.scratch[:0], f.toward, f.edge, color)
	if len(f.scratch) == 0 {
		// Dead end: turn around along the same edge.
		f.toward = g.edges[f.edge].Other(f.toward)
		return g.nodes[f.toward].Position, true, true
	}
	next := f.scratch[0]
	if len(f.scratch) > 1 && rng != nil {
		next = f.scratch[rng.Intn(len(f.scratch))]
	}
	from := f.toward
	f.edge = next
	f.toward = g.edges[next].Other(from)
	return g.nodes[f.toward].Position, false, true
}

// acquire snaps to the nearest edge and heads for whichever endpoint lies
// more in front of the actor.
func (f *Follower) acquire(g *Graph, pos, forward r3.Vec, color sense.Color) bool {
	edge, _, ok := g.NearestEdge(pos, color)
	if !ok {
		f.Reset()
		return false
	}
	e := g.edges[edge]
	a := r3.Sub(g.nodes[e.A].Position, pos)
	b := r3.Sub(g.nodes[e.B].Position, pos)
	f.toward = e.B
	if r3.Dot(a, forward) > r3.Dot(b, forward) {
		f.toward = e.A
	}
	f.edge = edge
	f.color = color
	f.active = true
	return true
}
