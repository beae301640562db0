package world

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 128

// Neighbor is a thing near a query point.
type Neighbor struct {
	T      *thing
	Delta  r3.Vec // from the query origin, ground plane
	DistSq float64
}

// Grid provides constant-time neighbor lookups using a cell-based grid.
// It is rebuilt from the snapshot every tick and read-only while brains run.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]*thing
}

// NewGrid creates a grid covering width x height.
func NewGrid(width, height, cellSize float64) *Grid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]*thing, cols*rows)
	for i := range cells {
		cells[i] = make([]*thing, 0, 8)
	}
	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes every thing from the grid.
func (g *Grid) Clear() {
	for i := range g.cells {
		clear(g.cells[i])
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds t at its snapshot position.
func (g *Grid) Insert(t *thing) {
	idx := g.cellIndex(t.pos.X, t.pos.Y)
	g.cells[idx] = append(g.cells[idx], t)
}

// QueryRadiusInto appends the things whose centers lie within radius of
// p, up to MaxQueryResults. Reuse dst across calls to avoid allocations.
func (g *Grid) QueryRadiusInto(dst []Neighbor, p r3.Vec, radius float64, exclude *thing) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(p.X, p.Y)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, t := range g.cells[row*g.cols+col] {
				if t == exclude {
					continue
				}
				d := r3.Vec{X: t.pos.X - p.X, Y: t.pos.Y - p.Y}
				distSq := d.X*d.X + d.Y*d.Y
				if distSq > radiusSq {
					continue
				}
				dst = append(dst, Neighbor{T: t, Delta: d, DistSq: distSq})
				if len(dst) >= MaxQueryResults {
					return dst
				}
			}
		}
	}
	return dst
}

// At returns the thing whose body covers p, nearest first, or nil.
func (g *Grid) At(p r3.Vec, maxRadius float64, scratch []Neighbor) *thing {
	var best *thing
	bestGap := 0.0
	for _, n := range g.QueryRadiusInto(scratch[:0], p, maxRadius, nil) {
		if n.T.status.Missile {
			continue
		}
		gap := n.DistSq - n.T.radius*n.T.radius
		if gap > 0 {
			continue
		}
		if best == nil || gap < bestGap {
			best, bestGap = n.T, gap
		}
	}
	return best
}

func (g *Grid) cellCoords(x, y float64) (col, row int) {
	col = min(max(int(x/g.cellSize), 0), g.cols-1)
	row = min(max(int(y/g.cellSize), 0), g.rows-1)
	return col, row
}

func (g *Grid) cellIndex(x, y float64) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}
