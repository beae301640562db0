package nav

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/sense"
)

func line() *Graph {
	g := NewGraph()
	g.AddPath(sense.Red, []r3.Vec{{X: 0}, {X: 10}, {X: 20}}, false)
	g.AddPath(sense.Blue, []r3.Vec{{Y: 50}, {X: 10, Y: 50}, {X: 10, Y: 60}}, true)
	return g
}

func TestNearestEdge(t *testing.T) {
	g := line()

	tests := []struct {
		name     string
		pos      r3.Vec
		color    sense.Color
		wantEdge int
	}{
		{"any color near red", r3.Vec{X: 15, Y: 2}, sense.NoColor, 1},
		{"red only", r3.Vec{X: 5, Y: 40}, sense.Red, 0},
		{"blue only", r3.Vec{X: 5, Y: 0}, sense.Blue, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edge, _, ok := g.NearestEdge(tt.pos, tt.color)
			if !ok || edge != tt.wantEdge {
				t.Errorf("NearestEdge = %d, %v; want %d", edge, ok, tt.wantEdge)
			}
		})
	}

	if _, _, ok := g.NearestEdge(r3.Vec{}, sense.Green); ok {
		t.Errorf("no green path exists")
	}
}

func TestNearestNode(t *testing.T) {
	g := line()
	n, ok := g.NearestNode(r3.Vec{X: 9, Y: 1}, sense.Red)
	if !ok || g.Node(n).Position.X != 10 {
		t.Errorf("NearestNode = %d (%v), want the node at x=10", n, ok)
	}
}

func TestFollowerWalksAndTurnsAtEnd(t *testing.T) {
	g := line()
	var f Follower
	f.Reset()
	rng := rand.New(rand.NewSource(1))

	pos := r3.Vec{X: 1, Y: 0.5}
	forward := r3.Vec{X: 1}

	target, atEnd, ok := f.Step(g, pos, forward, sense.Red, 0.5, rng)
	if !ok || atEnd || target.X != 10 {
		t.Fatalf("first Step = %v, %v, %v; want x=10", target, atEnd, ok)
	}

	// Arrive at the middle node: continue to the far end.
	target, atEnd, _ = f.Step(g, r3.Vec{X: 10}, forward, sense.Red, 0.5, rng)
	if atEnd || target.X != 20 {
		t.Errorf("Step at middle = %v, %v; want x=20", target, atEnd)
	}

	// Arrive at the dead end: turn around.
	target, atEnd, _ = f.Step(g, r3.Vec{X: 20}, forward, sense.Red, 0.5, rng)
	if !atEnd || target.X != 10 {
		t.Errorf("Step at end = %v, %v; want turn back to x=10", target, atEnd)
	}
}

func TestFollowerLoopsWithoutEnd(t *testing.T) {
	g := line()
	var f Follower
	f.Reset()

	pos := r3.Vec{X: 1, Y: 50}
	for i := 0; i < 8; i++ {
		target, atEnd, ok := f.Step(g, pos, r3.Vec{X: 1}, sense.Blue, 0.5, nil)
		if !ok {
			t.Fatalf("step %d: lost the path", i)
		}
		if atEnd {
			t.Fatalf("step %d: a loop has no end", i)
		}
		pos = target
	}
}

func TestFollowerReacquiresOnColorChange(t *testing.T) {
	g := line()
	var f Follower
	f.Reset()

	f.Step(g, r3.Vec{X: 1}, r3.Vec{X: 1}, sense.Red, 0.5, nil)
	target, _, ok := f.Step(g, r3.Vec{X: 1}, r3.Vec{Y: 1}, sense.Blue, 0.5, nil)
	if !ok || target.Y < 50 {
		t.Errorf("expected a blue waypoint, got %v", target)
	}
}
