package testutils

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"
)

// MaskImage draws a grid of side x side tiles, black where mask is true and white elsewhere, so
// that a luminance classifier sees the mask back. Extra pixels pad the right and bottom edges.
func MaskImage(mask [][]bool, side, extra int) *image.NRGBA {
	rows := len(mask)
	cols := 0
	if rows > 0 {
		cols = len(mask[0])
	}
	img := imaging.New(cols*side+extra, rows*side+extra, color.White)
	black := imaging.New(side, side, color.Black)
	for r, row := range mask {
		for c, isSet := range row {
			if isSet {
				img = imaging.Paste(img, black, image.Pt(c*side, r*side))
			}
		}
	}
	return img
}

// EncodeImage encodes img in the given format ("png", "jpg") and fails the test if it cannot.
func EncodeImage(tb testing.TB, img image.Image, format string) []byte {
	tb.Helper()
	imagingFormat, err := imaging.FormatFromExtension(format)
	test.That(tb, err, test.ShouldBeNil)
	var buf bytes.Buffer
	test.That(tb, imaging.Encode(&buf, img, imagingFormat), test.ShouldBeNil)
	return buf.Bytes()
}
