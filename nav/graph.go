// Package nav is the waypoint graph actors can be told to follow.
package nav

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/sense"
)

// Node is a waypoint.
type Node struct {
	Position r3.Vec
	edges    []int
}

// Edge joins two nodes of the same path.
type Edge struct {
	A, B  int
	Color sense.Color
}

// Other returns the endpoint opposite n.
func (e Edge) Other(n int) int {
	if e.A == n {
		return e.B
	}
	return e.A
}

// Graph holds every path in the level. Paths are distinguished by color;
// they never share nodes.
type Graph struct {
	nodes []Node
	edges []Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddPath appends a polyline path. When loop is set the last point is joined
// back to the first.
func (g *Graph) AddPath(color sense.Color, points []r3.Vec, loop bool) {
	if len(points) == 0 {
		return
	}
	first := len(g.nodes)
	for _, p := range points {
		g.nodes = append(g.nodes, Node{Position: p})
	}
	for i := 1; i < len(points); i++ {
		g.link(first+i-1, first+i, color)
	}
	if loop && len(points) > 2 {
		g.link(first+len(points)-1, first, color)
	}
}

func (g *Graph) link(a, b int, color sense.Color) {
	id := len(g.edges)
	g.edges = append(g.edges, Edge{A: a, B: b, Color: color})
	g.nodes[a].edges = append(g.nodes[a].edges, id)
	g.nodes[b].edges = append(g.nodes[b].edges, id)
}

// Node returns node i.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Edge returns edge i.
func (g *Graph) Edge(i int) Edge { return g.edges[i] }

// Len returns the number of nodes and edges.
func (g *Graph) Len() (nodes, edges int) {
	if g == nil {
		return 0, 0
	}
	return len(g.nodes), len(g.edges)
}

func matches(c, want sense.Color) bool {
	return want == sense.NoColor || c == want
}

// closestOnSegment projects p onto the segment a-b.
func closestOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r3.Add(a, r3.Scale(t, ab))
}

// NearestEdge returns the edge closest to pos among paths of the given color
// (NoColor matches every path) and the closest point on it. Ties go to the
// lower edge index.
func (g *Graph) NearestEdge(pos r3.Vec, color sense.Color) (edge int, point r3.Vec, ok bool) {
	if g == nil {
		return -1, r3.Vec{}, false
	}
	best := math.Inf(1)
	edge = -1
	for i, e := range g.edges {
		if !matches(e.Color, color) {
			continue
		}
		q := closestOnSegment(pos, g.nodes[e.A].Position, g.nodes[e.B].Position)
		if d := r3.Norm2(r3.Sub(q, pos)); d < best {
			best = d
			edge = i
			point = q
		}
	}
	return edge, point, edge >= 0
}

// NearestNode returns the node closest to pos on a path of the given color.
func (g *Graph) NearestNode(pos r3.Vec, color sense.Color) (int, bool) {
	if g == nil {
		return -1, false
	}
	best := math.Inf(1)
	node := -1
	for i, n := range g.nodes {
		usable := false
		for _, e := range n.edges {
			if matches(g.edges[e].Color, color) {
				usable = true
				break
			}
		}
		if !usable {
			continue
		}
		if d := r3.Norm2(r3.Sub(n.Position, pos)); d < best {
			best = d
			node = i
		}
	}
	return node, node >= 0
}

// exits returns the edges leaving node n other than via, appended to dst.
func (g *Graph) exits(dst []int, n, via int, color sense.Color) []int {
	for _, e := range g.nodes[n].edges {
		if e != via && matches(g.edges[e].Color, color) {
			dst = append(dst, e)
		}
	}
	return dst
}
