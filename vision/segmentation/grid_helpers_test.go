package segmentation

import "github.com/pkg/errors"

// gridFromRows copies nested rows into a Grid. All rows must have the same length.
func gridFromRows[T any](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return &Grid[T]{}, nil
	}
	g := NewGrid[T](len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, errors.Errorf("row %d has %d cells, expected %d", r, len(row), g.Cols)
		}
		copy(g.Cells[r*g.Cols:], row)
	}
	return g, nil
}

func toRows[T any](g *Grid[T]) [][]T {
	out := make([][]T, g.Rows)
	for r := range out {
		out[r] = append([]T(nil), g.Cells[r*g.Cols:(r+1)*g.Cols]...)
	}
	return out
}

// maskOf returns the BoolGrid of non-background cells.
func maskOf(lg *LabelGrid) *BoolGrid {
	mask := NewBoolGrid(lg.Rows, lg.Cols)
	for i, label := range lg.Cells {
		mask.Cells[i] = label != 0
	}
	return mask
}
