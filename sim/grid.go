package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/yamb0x/particle-life-synth-sub004/components"
)

// Neighbor holds a nearby particle with precomputed spatial data, avoiding
// a second distance computation in the force loop.
type Neighbor struct {
	E      ecs.Entity
	Seq    int     // insertion order, a deterministic tie-break for coincident pairs
	DX, DY float64 // delta from query origin to the neighbor
	Dist   float64
}

// SpatialGrid buckets particles into uniform cells so force queries only
// examine the same and adjacent cells instead of every pair. It is rebuilt
// from scratch every frame; it never outlives a particle-count change.
//
// Cells tile the world exactly: the effective cell size is the world extent
// divided by the cell count, never below the requested size. Exact tiling is
// what makes the modular cell wraparound in wrap mode sound.
type SpatialGrid struct {
	cellSize float64 // requested size, kept for Matches
	cellW    float64 // effective cell extent along x
	cellH    float64 // effective cell extent along y
	cols     int
	rows     int
	width    float64
	height   float64
	wrap     bool
	seq      int
	cells    [][]gridEntry
}

type gridEntry struct {
	e   ecs.Entity
	seq int
}

// NewSpatialGrid creates a grid covering the given world size. In wrap mode
// neighbor lookups cross the world seam with toroidal deltas.
func NewSpatialGrid(width, height, cellSize float64, wrap bool) *SpatialGrid {
	if cellSize < 1 {
		cellSize = 1
	}
	cols := int(width / cellSize)
	if cols < 1 {
		cols = 1
	}
	rows := int(height / cellSize)
	if rows < 1 {
		rows = 1
	}

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cellW:    width / float64(cols),
		cellH:    height / float64(rows),
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		wrap:     wrap,
		cells:    cells,
	}
}

// Matches reports whether the grid already covers the given geometry, so the
// caller can Clear instead of reallocating.
func (g *SpatialGrid) Matches(width, height, cellSize float64, wrap bool) bool {
	return g.width == width && g.height == height && g.cellSize == cellSize && g.wrap == wrap
}

// Clear removes all particles from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.seq = 0
}

// Insert adds a particle at the given position. Insertion order doubles as a
// stable particle sequence for the frame.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	if idx >= 0 && idx < len(g.cells) {
		g.cells[idx] = append(g.cells[idx], gridEntry{e: e, seq: g.seq})
	}
	g.seq++
}

// QueryInto appends all particles within radius of (x, y) to dst and returns
// the updated slice. Reuse dst across calls to avoid allocations. Each
// Neighbor carries the delta and distance toward the neighbor.
func (g *SpatialGrid) QueryInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	colRadius := int(radius/g.cellW) + 1
	rowRadius := int(radius/g.cellH) + 1

	centerCol := int(x / g.cellW)
	centerRow := int(y / g.cellH)

	minC, maxC := centerCol-colRadius, centerCol+colRadius
	minR, maxR := centerRow-rowRadius, centerRow+rowRadius
	if g.wrap {
		// A query radius spanning the whole world must still visit each
		// cell exactly once.
		if maxC-minC+1 > g.cols {
			minC, maxC = 0, g.cols-1
		}
		if maxR-minR+1 > g.rows {
			minR, maxR = 0, g.rows-1
		}
	}

	radiusSq := radius * radius

	for c := minC; c <= maxC; c++ {
		for r := minR; r <= maxR; r++ {
			col, row := c, r
			if g.wrap {
				col = ((col % g.cols) + g.cols) % g.cols
				row = ((row % g.rows) + g.rows) % g.rows
			} else if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
				continue
			}
			idx := row*g.cols + col

			for _, en := range g.cells[idx] {
				if en.e == exclude {
					continue
				}

				pos := posMap.Get(en.e)
				if pos == nil {
					continue
				}

				dx, dy := g.delta(x, y, pos.X, pos.Y)
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: en.e, Seq: en.seq, DX: dx, DY: dy, Dist: sqrt(distSq)})
				}
			}
		}
	}

	return dst
}

// delta returns the displacement from (x1, y1) to (x2, y2), crossing the
// world seam in wrap mode.
func (g *SpatialGrid) delta(x1, y1, x2, y2 float64) (dx, dy float64) {
	dx = x2 - x1
	dy = y2 - y1

	if g.wrap {
		if dx > g.width/2 {
			dx -= g.width
		} else if dx < -g.width/2 {
			dx += g.width
		}
		if dy > g.height/2 {
			dy -= g.height
		} else if dy < -g.height/2 {
			dy += g.height
		}
	}

	return dx, dy
}

// cellIndex returns the flat index for a world position, clamped into range.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellW)
	row := int(y / g.cellH)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
