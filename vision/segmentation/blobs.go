package segmentation

import "image"

// LabelGrid assigns every cell of a BoolGrid to a blob. 0 is background and 1..MaxLabel are the
// blobs in the order a row-major scan first reaches them.
type LabelGrid struct {
	*Grid[int]
	MaxLabel int
}

// ExtractBlobs labels the maximal 4-connected regions of true cells. Diagonal neighbours are not
// connected. Labels are dense and numbered in row-major discovery order, so identical input always
// yields identical labels.
func ExtractBlobs(g *BoolGrid) *LabelGrid {
	labels := &LabelGrid{Grid: NewGrid[int](g.Rows, g.Cols)}
	var queue []image.Point
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if !g.At(r, c) || labels.At(r, c) != 0 {
				continue
			}
			labels.MaxLabel++
			label := labels.MaxLabel
			// cells are labeled before they are queued so none is queued twice.
			labels.Set(r, c, label)
			queue = append(queue[:0], image.Point{X: c, Y: r})
			for head := 0; head < len(queue); head++ {
				pt := queue[head]
				for _, n := range neighbors4(pt) {
					if !g.In(n.Y, n.X) || !g.At(n.Y, n.X) || labels.At(n.Y, n.X) != 0 {
						continue
					}
					labels.Set(n.Y, n.X, label)
					queue = append(queue, n)
				}
			}
		}
	}
	return labels
}

func neighbors4(pt image.Point) [4]image.Point {
	return [4]image.Point{
		{X: pt.X, Y: pt.Y - 1},
		{X: pt.X, Y: pt.Y + 1},
		{X: pt.X - 1, Y: pt.Y},
		{X: pt.X + 1, Y: pt.Y},
	}
}

// Members returns the cells of each label, indexed by label-1, in row-major order.
func (lg *LabelGrid) Members() [][]image.Point {
	members := make([][]image.Point, lg.MaxLabel)
	for r := 0; r < lg.Rows; r++ {
		for c := 0; c < lg.Cols; c++ {
			if label := lg.At(r, c); label > 0 {
				members[label-1] = append(members[label-1], image.Point{X: c, Y: r})
			}
		}
	}
	return members
}
