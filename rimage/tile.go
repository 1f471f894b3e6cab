package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// A Tile is one square cell of a tiled image.
type Tile struct {
	Row, Col int
	// Bounds is the pixel rectangle covered by the tile in the source image.
	Bounds image.Rectangle
	// Data is the tile re-encoded as a standalone image in Format.
	Data   []byte
	Format TileFormat
}

// TileGrid is a row-major grid of tiles. Tile (r, c) is stored at index r*Cols+c.
type TileGrid struct {
	Rows, Cols int
	Side       int
	Tiles      []Tile
}

// Len returns the number of tiles.
func (g *TileGrid) Len() int {
	return len(g.Tiles)
}

// At returns tile (row, col).
func (g *TileGrid) At(row, col int) *Tile {
	return &g.Tiles[row*g.Cols+col]
}

// TileCount returns the number of rows and columns TileImage produces for an image of the given
// size. Trailing strips narrower than side are dropped.
func TileCount(width, height, side int) (rows, cols int) {
	if side <= 0 || width < side || height < side {
		return 0, 0
	}
	return height / side, width / side
}

// TileImage cuts img into side x side tiles. Tile (r, c) covers pixels
// [c*side, c*side+side) x [r*side, r*side+side) relative to the image origin. A trailing partial
// row or column is dropped, never padded. The source image is not modified.
func TileImage(img image.Image, side int, format TileFormat) (*TileGrid, error) {
	if side <= 0 {
		return nil, errors.Errorf("tile side must be positive, got %d", side)
	}
	bounds := img.Bounds()
	rows, cols := TileCount(bounds.Dx(), bounds.Dy(), side)
	grid := &TileGrid{
		Rows:  rows,
		Cols:  cols,
		Side:  side,
		Tiles: make([]Tile, 0, rows*cols),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rect := image.Rect(c*side, r*side, c*side+side, r*side+side).Add(bounds.Min)
			data, err := EncodeTile(imaging.Crop(img, rect), format)
			if err != nil {
				return nil, errors.Wrapf(err, "tile (%d, %d)", r, c)
			}
			grid.Tiles = append(grid.Tiles, Tile{
				Row:    r,
				Col:    c,
				Bounds: rect,
				Data:   data,
				Format: format,
			})
		}
	}
	return grid, nil
}
