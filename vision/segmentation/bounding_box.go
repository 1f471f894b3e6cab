package segmentation

import "fmt"

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coordinates is an axis-aligned pixel rectangle given by its top-left and bottom-right corners.
type Coordinates struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

// NewCoordinates returns the rectangle (x1, y1) - (x2, y2).
func NewCoordinates(x1, y1, x2, y2 int) Coordinates {
	return Coordinates{TopLeft: Point{x1, y1}, BottomRight: Point{x2, y2}}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d, %d)-(%d, %d)", c.TopLeft.X, c.TopLeft.Y, c.BottomRight.X, c.BottomRight.Y)
}

// BoundingBoxes returns, for every label 1..MaxLabel in ascending order, the smallest rectangle of
// cells carrying it, with column as x and row as y, scaled by cellSize into pixels. The corners
// are cell origins, so a blob of one cell gives a zero-area box at that cell.
func BoundingBoxes(lg *LabelGrid, cellSize int) []Coordinates {
	boxes := make([]Coordinates, 0, lg.MaxLabel)
	for _, members := range lg.Members() {
		// members are in row-major order, so rows come sorted
		minX, maxX := members[0].X, members[0].X
		for _, m := range members[1:] {
			minX = min(minX, m.X)
			maxX = max(maxX, m.X)
		}
		minY, maxY := members[0].Y, members[len(members)-1].Y
		boxes = append(boxes, NewCoordinates(minX*cellSize, minY*cellSize, maxX*cellSize, maxY*cellSize))
	}
	return boxes
}
