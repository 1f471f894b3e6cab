package rimage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"go.viam.com/test"

	"go.viam.com/landmark/utils"
)

var red = color.NRGBA{R: 255, A: 255}

func TestDecodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 8))
	img.Set(3, 3, red)

	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, img), test.ShouldBeNil)
	decoded, err := DecodeImage(buf.Bytes(), 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds(), test.ShouldResemble, img.Bounds())

	var bufJPEG bytes.Buffer
	test.That(t, jpeg.Encode(&bufJPEG, img, nil), test.ShouldBeNil)
	decoded, err = DecodeImage(bufJPEG.Bytes(), 32)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Dx(), test.ShouldEqual, 4)
}

func TestDecodeImageErrors(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("definitely not an image")} {
		_, err := DecodeImage(data, 100)
		test.That(t, err, test.ShouldNotBeNil)
		var decodeErr *DecodeError
		test.That(t, errors.As(err, &decodeErr), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode image")
	}
}

func TestDecodeImagePixelLimit(t *testing.T) {
	// a large flat image compresses to almost nothing, so only its header tells how big it is
	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4000, 4000))), test.ShouldBeNil)
	test.That(t, buf.Len(), test.ShouldBeLessThan, 100<<10)

	_, err := DecodeImage(buf.Bytes(), 1_000_000)
	test.That(t, err, test.ShouldNotBeNil)
	var decodeErr *DecodeError
	test.That(t, errors.As(err, &decodeErr), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrImageTooLarge), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "4000x4000 is 16000000 pixels, at most 1000000")

	decoded, err := DecodeImage(buf.Bytes(), 16_000_000)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Dx(), test.ShouldEqual, 4000)
}

func TestEncodeTile(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 8))
	img.Set(3, 3, red)

	data, err := EncodeTile(img, TileFormatPNG)
	test.That(t, err, test.ShouldBeNil)
	decoded, err := png.Decode(bytes.NewReader(data))
	test.That(t, err, test.ShouldBeNil)
	r, g, b, a := decoded.At(3, 3).RGBA()
	test.That(t, []uint32{r, g, b, a}, test.ShouldResemble, []uint32{0xffff, 0, 0, 0xffff})

	data, err = EncodeTile(img, TileFormatJPEG)
	test.That(t, err, test.ShouldBeNil)
	_, err = jpeg.Decode(bytes.NewReader(data))
	test.That(t, err, test.ShouldBeNil)
}

func TestParseTileFormat(t *testing.T) {
	for in, expected := range map[string]TileFormat{
		"":     TileFormatPNG,
		"PNG":  TileFormatPNG,
		"jpg":  TileFormatJPEG,
		"jpeg": TileFormatJPEG,
	} {
		format, err := ParseTileFormat(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, format, test.ShouldEqual, expected)
	}
	_, err := ParseTileFormat("gif")
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, TileFormatPNG.MimeType(), test.ShouldEqual, utils.MimeTypePNG)
	test.That(t, TileFormatJPEG.MimeType(), test.ShouldEqual, utils.MimeTypeJPEG)
}
