// Package buildings finds the buildings a photographer is facing: it turns a position and a
// bearing into a search box in the facing direction, queries a building registry for the box and
// orders the answers the way a camera sweeping across the view would meet them.
package buildings

import (
	"fmt"
	"math"

	geo "github.com/kellydunn/golang-geo"

	rutils "go.viam.com/landmark/utils"
)

const (
	// FootDegree is the number of degrees of latitude or longitude per foot.
	FootDegree = 0.000002742701671
	// LocationRange is the default length of the search box, in feet.
	LocationRange = 1000
)

// A Building is one registry record.
type Building struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Occupancy is the number of dwelling units.
	Occupancy int `json:"occupancy"`
}

// Point returns the location of the building.
func (b Building) Point() *geo.Point {
	return geo.NewPoint(b.Latitude, b.Longitude)
}

func (b Building) String() string {
	return fmt.Sprintf("(%v, %v) x%d", b.Latitude, b.Longitude, b.Occupancy)
}

// Direction is one of the four 90 degree wide bearing groups.
type Direction int

// The bearing groups.
const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// NormalizeBearing reduces a finite bearing in degrees into [0, 360).
func NormalizeBearing(bearing float64) float64 {
	return rutils.ModAngDeg(bearing)
}

// DirectionFromBearing groups a bearing: north is (315, 360) and [0, 45), east [45, 135), south
// [135, 225) and west [225, 315]. Bearings outside [0, 360) are normalized first.
func DirectionFromBearing(bearing float64) (Direction, error) {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return 0, fmt.Errorf("bearing must be a finite number of degrees, got %v", bearing)
	}
	bearing = NormalizeBearing(bearing)
	switch {
	case bearing > 315 || bearing < 45:
		return North, nil
	case bearing < 135:
		return East, nil
	case bearing < 225:
		return South, nil
	default:
		return West, nil
	}
}
