package rimage

import (
	"image"

	"github.com/montanaflynn/stats"
)

// Luminance returns the perceived brightness of a pixel in [0, 256), 0 being black.
func Luminance(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	// RGBA returns 16 bit channels.
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 256
}

// MeanLuminance returns the average Luminance over every pixel of img, or 0 for an empty image.
func MeanLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	values := make(stats.Float64Data, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			values = append(values, Luminance(img, x, y))
		}
	}
	mean, err := stats.Mean(values)
	if err != nil {
		// only an empty image has no mean.
		return 0
	}
	return mean
}
