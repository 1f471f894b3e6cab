package landmark

import (
	"go.viam.com/landmark/services/buildings"
	"go.viam.com/landmark/vision/segmentation"
)

// Box is a detected building: where it is in the photo and which registry building it is.
type Box struct {
	Coordinates segmentation.Coordinates `json:"coordinates"`
	Building    buildings.Building       `json:"building"`
	// DistanceMeters is the great circle distance from the photographer to the building.
	DistanceMeters float64 `json:"distance_meters"`
}

// Match pairs boxes and candidates by position. Whatever is left over in the longer list is
// dropped.
func Match(boxes []segmentation.Coordinates, candidates []buildings.Building) []Box {
	n := min(len(boxes), len(candidates))
	matched := make([]Box, 0, n)
	for i := 0; i < n; i++ {
		matched = append(matched, Box{Coordinates: boxes[i], Building: candidates[i]})
	}
	return matched
}
