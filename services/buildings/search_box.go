package buildings

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	rutils "go.viam.com/landmark/utils"
)

// SearchBox returns the registry search area for an observer at (lat, lon) facing dir. The box is
// rangeFeet long in the facing direction, starting at the observer, and reaches rangeFeet/2 to
// either side of it:
//
//	north: lat .. lat+range,     lon-range/2 .. lon+range/2
//	east:  lat-range/2 .. lat+range/2, lon .. lon+range
//	south: lat-range .. lat,     lon-range/2 .. lon+range/2
//	west:  lat-range/2 .. lat+range/2, lon-range .. lon
//
// Latitudes stop at the poles. Longitudes past ±180 wrap around, in which case the box crosses the
// antimeridian and its longitude interval is inverted.
func SearchBox(lat, lon float64, dir Direction, rangeFeet float64) s2.Rect {
	length := FootDegree * rangeFeet
	half := length / 2

	var minLat, maxLat, minLon, maxLon float64
	switch dir {
	case North:
		minLat, maxLat = lat, lat+length
		minLon, maxLon = lon-half, lon+half
	case East:
		minLat, maxLat = lat-half, lat+half
		minLon, maxLon = lon, lon+length
	case South:
		minLat, maxLat = lat-length, lat
		minLon, maxLon = lon-half, lon+half
	default:
		minLat, maxLat = lat-half, lat+half
		minLon, maxLon = lon-length, lon
	}

	lng := s1.FullInterval()
	if maxLon-minLon < 360 {
		lng = s1.IntervalFromEndpoints(
			(s1.Angle(normalizeLongitude(minLon)) * s1.Degree).Radians(),
			(s1.Angle(normalizeLongitude(maxLon)) * s1.Degree).Radians())
	}
	return s2.Rect{
		Lat: r1.Interval{
			Lo: (s1.Angle(clampLatitude(minLat)) * s1.Degree).Radians(),
			Hi: (s1.Angle(clampLatitude(maxLat)) * s1.Degree).Radians(),
		},
		Lng: lng,
	}
}

// normalizeLongitude brings lon into (-180, 180].
func normalizeLongitude(lon float64) float64 {
	if lon > -180 && lon <= 180 {
		return lon
	}
	return 180 - rutils.ModAngDeg(180-lon)
}

func clampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// CrossesAntimeridian reports whether box spans the ±180 meridian.
func CrossesAntimeridian(box s2.Rect) bool {
	return box.Lng.IsInverted()
}

// Bounds returns the corners of box in degrees. When box crosses the antimeridian minLon is
// greater than maxLon.
func Bounds(box s2.Rect) (minLat, minLon, maxLat, maxLon float64) {
	lo, hi := box.Lo(), box.Hi()
	return lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees()
}
