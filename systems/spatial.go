// Package systems provides the steering rules and the ECS systems that apply them.
package systems

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid buckets snapshot indices into square cells for radius queries.
// Queries return candidates only; callers still check the exact distance.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // flat grid of snapshot indices
}

// NewSpatialGrid creates a spatial grid covering the given world size.
// A non-positive cell size collapses the grid to a single cell.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = max(width, height) + 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all indices from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a snapshot index to the grid at the given position.
func (g *SpatialGrid) Insert(idx int, p r2.Vec) {
	col, row := g.cellCoords(p)
	cell := row*g.cols + col
	g.cells[cell] = append(g.cells[cell], idx)
}

// QueryInto appends every index stored in cells overlapping the disc of the
// given radius around p, in ascending index order, and returns dst.
// Ascending order keeps accumulation identical to a scan of the whole collection.
func (g *SpatialGrid) QueryInto(dst []int, p r2.Vec, radius float64) []int {
	start := len(dst)
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(p)

	minCol, maxCol := max(centerCol-cellRadius, 0), min(centerCol+cellRadius, g.cols-1)
	minRow, maxRow := max(centerRow-cellRadius, 0), min(centerRow+cellRadius, g.rows-1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}

	slices.Sort(dst[start:])
	return dst
}

// cellCoords returns the clamped cell column and row for a world position.
func (g *SpatialGrid) cellCoords(p r2.Vec) (col, row int) {
	col = int(p.X / g.cellSize)
	row = int(p.Y / g.cellSize)

	// Clamp to valid range
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
	return col, row
}
