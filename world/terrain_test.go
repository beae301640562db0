package world

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/config"
)

func TestTerrainQueries(t *testing.T) {
	tr := NewTerrain(20, 20, 2)
	// A rock wall along x in [10, 12), and a lake in the top-left cell.
	for y := 1.0; y < 20; y += 2 {
		tr.SetCell(r3.Vec{X: 11, Y: y}, Rock)
	}
	tr.SetCell(r3.Vec{X: 1, Y: 19}, Water)

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"inside", tr.Contains(r3.Vec{X: 5, Y: 5}), true},
		{"outside", tr.Contains(r3.Vec{X: -1, Y: 5}), false},
		{"edge is inside", tr.Contains(r3.Vec{X: 20, Y: 20}), true},
		{"lake", tr.IsWater(r3.Vec{X: 1.5, Y: 18.5}), true},
		{"dry land", tr.IsWater(r3.Vec{X: 5, Y: 5}), false},
		{"wall is solid", tr.IsSolid(r3.Vec{X: 10.5, Y: 3}), true},
		{"same side is visible", tr.HasLineOfSight(r3.Vec{X: 2, Y: 2}, r3.Vec{X: 8, Y: 15}), true},
		{"wall blocks sight", tr.HasLineOfSight(r3.Vec{X: 2, Y: 2}, r3.Vec{X: 18, Y: 2}), false},
		{"wall blocks travel", tr.Blocked(r3.Vec{X: 2, Y: 2}, r3.Vec{X: 18, Y: 2}, 0.5), true},
		{"body too close to wall", tr.Blocked(r3.Vec{X: 2, Y: 2}, r3.Vec{X: 9.7, Y: 2}, 0.5), true},
		{"clear travel", tr.Blocked(r3.Vec{X: 2, Y: 2}, r3.Vec{X: 8, Y: 8}, 0.5), false},
		{"leaving the level", tr.Blocked(r3.Vec{X: 2, Y: 2}, r3.Vec{X: -2, Y: 2}, 0.5), true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestGenerateTerrain(t *testing.T) {
	cfg := config.Cfg()
	a := GenerateTerrain(cfg, 3)
	b := GenerateTerrain(cfg, 3)
	if !slices.Equal(a.grid, b.grid) {
		t.Fatal("same seed produced different terrain")
	}

	var counts [3]int
	for _, c := range a.grid {
		counts[c]++
	}
	if counts[Land] == 0 {
		t.Error("no land generated")
	}
	for col := range a.cols {
		if a.grid[col] != Land || a.grid[(a.rows-1)*a.cols+col] != Land {
			t.Fatalf("border column %d is not land", col)
		}
	}
}

func TestNoiseRange(t *testing.T) {
	n := NewNoise(9)
	for i := range 500 {
		x, y := float64(i)*0.37, float64(i)*0.11
		if v := n.Fractal(x, y, 3); v < -1.01 || v > 1.01 {
			t.Fatalf("Fractal(%v, %v) = %v out of range", x, y, v)
		}
	}
	if n.At(3.3, 4.1) != NewNoise(9).At(3.3, 4.1) {
		t.Error("same seed produced different noise")
	}
}

func TestGridQuery(t *testing.T) {
	g := NewGrid(20, 20, 4)
	things := []*thing{
		{id: 1, pos: r3.Vec{X: 5, Y: 5}, radius: 0.5, alive: true},
		{id: 2, pos: r3.Vec{X: 7, Y: 5}, radius: 1, alive: true},
		{id: 3, pos: r3.Vec{X: 15, Y: 15}, radius: 0.5, alive: true},
	}
	for _, th := range things {
		g.Insert(th)
	}

	var ids []uint64
	for _, n := range g.QueryRadiusInto(nil, r3.Vec{X: 5, Y: 5}, 3, things[0]) {
		ids = append(ids, n.T.id)
	}
	if !slices.Equal(ids, []uint64{2}) {
		t.Errorf("neighbors = %v, want [2]", ids)
	}

	if got := g.At(r3.Vec{X: 7.8, Y: 5}, 1, nil); got == nil || got.id != 2 {
		t.Errorf("At on thing 2 = %v", got)
	}
	if got := g.At(r3.Vec{X: 10, Y: 10}, 1, nil); got != nil {
		t.Errorf("At on empty ground = %v", got)
	}

	g.Clear()
	if n := g.QueryRadiusInto(nil, r3.Vec{X: 5, Y: 5}, 30, nil); len(n) != 0 {
		t.Errorf("cleared grid returned %d neighbors", len(n))
	}
}
