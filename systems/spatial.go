package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// cellKey addresses one cell of the spatial grid.
type cellKey struct {
	X, Y, Z int
}

// SpatialGrid buckets indices by position for neighbor lookups.
// The world is unbounded, so cells are allocated on demand.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
}

// NewSpatialGrid creates a spatial grid with the given cell edge length.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// CellSize returns the cell edge length.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// Clear removes all entries while keeping allocated buckets.
func (g *SpatialGrid) Clear() {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}
}

// Insert adds an index to the cell containing pos.
func (g *SpatialGrid) Insert(idx int, pos r3.Vec) {
	k := g.key(pos)
	g.cells[k] = append(g.cells[k], idx)
}

// Neighbors calls fn for every index in the cell containing pos and the 26
// cells around it. Callers filter by exact distance.
func (g *SpatialGrid) Neighbors(pos r3.Vec, fn func(idx int)) {
	c := g.key(pos)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, idx := range g.cells[cellKey{c.X + dx, c.Y + dy, c.Z + dz}] {
					fn(idx)
				}
			}
		}
	}
}

func (g *SpatialGrid) key(pos r3.Vec) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X / g.cellSize)),
		Y: int(math.Floor(pos.Y / g.cellSize)),
		Z: int(math.Floor(pos.Z / g.cellSize)),
	}
}
