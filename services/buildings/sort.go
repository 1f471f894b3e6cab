package buildings

import "sort"

// SortForDirection orders buildings in place for an observer facing dir.
//
// Each direction has its own comparator and they are not mirror images of one another:
//
//	north: latitude ascending, then longitude ascending
//	east:  longitude descending, then latitude descending
//	south: latitude descending, then longitude descending
//	west:  longitude ascending, then latitude ascending
func SortForDirection(buildings []Building, dir Direction) {
	switch dir {
	case North:
		sort.SliceStable(buildings, func(i, j int) bool {
			a, b := buildings[i], buildings[j]
			if a.Latitude != b.Latitude {
				return a.Latitude < b.Latitude
			}
			return a.Longitude < b.Longitude
		})
	case East:
		sort.SliceStable(buildings, func(i, j int) bool {
			a, b := buildings[i], buildings[j]
			if a.Longitude != b.Longitude {
				return a.Longitude > b.Longitude
			}
			return a.Latitude > b.Latitude
		})
	case South:
		sort.SliceStable(buildings, func(i, j int) bool {
			a, b := buildings[i], buildings[j]
			if a.Latitude != b.Latitude {
				return a.Latitude > b.Latitude
			}
			return a.Longitude > b.Longitude
		})
	case West:
		sort.SliceStable(buildings, func(i, j int) bool {
			a, b := buildings[i], buildings[j]
			if a.Longitude != b.Longitude {
				return a.Longitude < b.Longitude
			}
			return a.Latitude < b.Latitude
		})
	}
}
