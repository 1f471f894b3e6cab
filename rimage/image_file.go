// Package rimage holds the raster helpers of landmark: decoding uploads, cutting them into a grid
// of square tiles and encoding each tile as an independent image buffer.
package rimage

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	// register webp for uploads; imaging registers the jpeg, png, gif, bmp and tiff decoders.
	_ "golang.org/x/image/webp"

	"go.viam.com/landmark/utils"
)

// ErrImageTooLarge is wrapped in the DecodeError of an image with too many pixels.
var ErrImageTooLarge = errors.New("image too large")

// DecodeError is returned when uploaded bytes cannot be parsed as a raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image: %v", e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeImage decodes an uploaded image. The raster is used as stored; EXIF orientation is not
// applied. When maxPixels is positive the header is read first and a larger image is refused
// without decoding it. Any failure is reported as a *DecodeError.
func DecodeImage(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty image")}
	}
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, &DecodeError{Err: errors.Wrapf(ErrImageTooLarge,
				"%dx%d is %d pixels, at most %d are allowed", cfg.Width, cfg.Height, pixels, maxPixels)}
		}
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// TileFormat is the encoding used for tiles sent to the classifier.
type TileFormat string

const (
	// TileFormatPNG encodes tiles losslessly. This is the default.
	TileFormatPNG = TileFormat("png")
	// TileFormatJPEG encodes tiles as high quality jpegs.
	TileFormatJPEG = TileFormat("jpeg")
)

// ParseTileFormat returns the TileFormat for a config value. The empty string is png.
func ParseTileFormat(s string) (TileFormat, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return TileFormatPNG, nil
	case "jpg", "jpeg":
		return TileFormatJPEG, nil
	default:
		return "", errors.Errorf("unsupported tile format %q, use png or jpeg", s)
	}
}

// MimeType returns the mime type of encoded tiles.
func (f TileFormat) MimeType() string {
	if f == TileFormatJPEG {
		return utils.MimeTypeJPEG
	}
	return utils.MimeTypePNG
}

// Extension returns the file extension (without dot) used when naming uploaded tiles.
func (f TileFormat) Extension() string {
	if f == TileFormatJPEG {
		return "jpg"
	}
	return "png"
}

// EncodeTile encodes img in the given tile format.
func EncodeTile(img image.Image, format TileFormat) ([]byte, error) {
	imagingFormat, err := imaging.FormatFromExtension(format.Extension())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imagingFormat, imaging.JPEGQuality(95)); err != nil {
		return nil, errors.Wrapf(err, "encoding %s tile", format)
	}
	return buf.Bytes(), nil
}
