// Package segmentation labels connected regions of a tile grid and measures them.
package segmentation

import "fmt"

// Grid is a dense rows x cols grid stored row-major: cell (r, c) lives at r*Cols+c.
type Grid[T any] struct {
	Rows, Cols int
	Cells      []T
}

// NewGrid returns a zero valued rows x cols grid.
func NewGrid[T any](rows, cols int) *Grid[T] {
	if rows <= 0 || cols <= 0 {
		return &Grid[T]{}
	}
	return &Grid[T]{Rows: rows, Cols: cols, Cells: make([]T, rows*cols)}
}

// At returns cell (r, c).
func (g *Grid[T]) At(r, c int) T {
	return g.Cells[g.index(r, c)]
}

// Set sets cell (r, c).
func (g *Grid[T]) Set(r, c int, v T) {
	g.Cells[g.index(r, c)] = v
}

// In reports whether (r, c) is inside the grid.
func (g *Grid[T]) In(r, c int) bool {
	return r >= 0 && c >= 0 && r < g.Rows && c < g.Cols
}

func (g *Grid[T]) index(r, c int) int {
	if !g.In(r, c) {
		panic(fmt.Sprintf("cell (%d, %d) outside %dx%d grid", r, c, g.Rows, g.Cols))
	}
	return r*g.Cols + c
}

// BoolGrid marks the tiles classified as a building.
type BoolGrid = Grid[bool]

// NewBoolGrid returns an all-false rows x cols grid.
func NewBoolGrid(rows, cols int) *BoolGrid {
	return NewGrid[bool](rows, cols)
}

// RotateClockwise rotates an M x N grid 90 degrees clockwise into an N x M grid: input cell
// (r, c) ends up at (c, M-1-r).
func RotateClockwise[T any](g *Grid[T]) *Grid[T] {
	out := NewGrid[T](g.Cols, g.Rows)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			out.Set(c, g.Rows-1-r, g.At(r, c))
		}
	}
	return out
}
