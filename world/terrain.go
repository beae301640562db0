package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
)

// Cell is the ground type of one terrain cell.
type Cell uint8

const (
	Land Cell = iota
	Water
	Rock // solid, blocks ground and water travel
)

func (c Cell) String() string {
	switch c {
	case Land:
		return "land"
	case Water:
		return "water"
	case Rock:
		return "rock"
	}
	return "unknown"
}

// Terrain is a grid of ground cells covering [0, width] x [0, height].
type Terrain struct {
	grid     []Cell
	cellSize float64
	width    float64
	height   float64
	cols     int
	rows     int
}

var _ brain.Terrain = (*Terrain)(nil)

// NewTerrain creates flat land.
func NewTerrain(width, height, cellSize float64) *Terrain {
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)
	return &Terrain{
		grid:     make([]Cell, cols*rows),
		cellSize: cellSize,
		width:    width,
		height:   height,
		cols:     cols,
		rows:     rows,
	}
}

// GenerateTerrain fills a level with noise: high ground is rock, low
// ground is water, the rest is land. The level border stays land so
// actors can always be placed.
func GenerateTerrain(cfg *config.Config, seed int64) *Terrain {
	wc := cfg.World
	t := NewTerrain(wc.Width, wc.Height, wc.CellSize)
	noise := NewNoise(seed)
	for row := range t.rows {
		for col := range t.cols {
			if col == 0 || row == 0 || col == t.cols-1 || row == t.rows-1 {
				continue
			}
			v := noise.Fractal(float64(col)*wc.NoiseScale, float64(row)*wc.NoiseScale, 3)
			switch {
			case v > wc.WaterLevel:
				t.grid[row*t.cols+col] = Water
			case v < wc.RockLevel:
				t.grid[row*t.cols+col] = Rock
			}
		}
	}
	return t
}

// Size returns the level dimensions.
func (t *Terrain) Size() (width, height float64) { return t.width, t.height }

// Cell returns the ground type at p. Outside the level is rock.
func (t *Terrain) Cell(p r3.Vec) Cell {
	if !t.Contains(p) {
		return Rock
	}
	col := min(int(p.X/t.cellSize), t.cols-1)
	row := min(int(p.Y/t.cellSize), t.rows-1)
	return t.grid[row*t.cols+col]
}

// SetCell changes the ground type of the cell containing p.
func (t *Terrain) SetCell(p r3.Vec, c Cell) {
	if !t.Contains(p) {
		return
	}
	col := min(int(p.X/t.cellSize), t.cols-1)
	row := min(int(p.Y/t.cellSize), t.rows-1)
	t.grid[row*t.cols+col] = c
}

// Contains reports whether p lies inside the level.
func (t *Terrain) Contains(p r3.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= t.width && p.Y <= t.height
}

// IsWater reports whether p is over water.
func (t *Terrain) IsWater(p r3.Vec) bool {
	return t.Cell(p) == Water
}

// IsSolid reports whether p is inside rock.
func (t *Terrain) IsSolid(p r3.Vec) bool {
	return t.Cell(p) == Rock
}

// CircleHitsRock reports whether a circle overlaps a rock cell.
func (t *Terrain) CircleHitsRock(p r3.Vec, radius float64) bool {
	minCol := max(int((p.X-radius)/t.cellSize), 0)
	maxCol := min(int((p.X+radius)/t.cellSize), t.cols-1)
	minRow := max(int((p.Y-radius)/t.cellSize), 0)
	maxRow := min(int((p.Y+radius)/t.cellSize), t.rows-1)
	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if t.grid[row*t.cols+col] != Rock {
				continue
			}
			// Closest point of the cell to the circle center.
			cx := min(max(p.X, float64(col)*t.cellSize), float64(col+1)*t.cellSize)
			cy := min(max(p.Y, float64(row)*t.cellSize), float64(row+1)*t.cellSize)
			dx, dy := p.X-cx, p.Y-cy
			if dx*dx+dy*dy < radiusSq {
				return true
			}
		}
	}
	return false
}

// Blocked reports whether a body of the given radius cannot travel
// straight from a to b: the line crosses rock, or the body would overlap
// rock at b.
func (t *Terrain) Blocked(a, b r3.Vec, radius float64) bool {
	if !t.Contains(b) {
		return true
	}
	if t.CircleHitsRock(b, radius) {
		return true
	}
	return !t.HasLineOfSight(a, b)
}

// HasLineOfSight reports whether no rock lies between a and b. It steps
// along the line at less than a cell so thin walls are not skipped.
func (t *Terrain) HasLineOfSight(a, b r3.Vec) bool {
	d := r3.Vec{X: b.X - a.X, Y: b.Y - a.Y}
	dist := math.Hypot(d.X, d.Y)
	if dist < 1e-3 {
		return true
	}
	step := t.cellSize * 0.4
	steps := int(dist/step) + 1
	d = r3.Scale(1/dist, d)

	for i := 1; i < steps; i++ {
		p := r3.Vec{X: a.X + d.X*float64(i)*step, Y: a.Y + d.Y*float64(i)*step}
		if t.IsSolid(p) {
			return false
		}
	}
	return true
}
