package buildings

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"go.viam.com/test"
)

func TestDirectionFromBearing(t *testing.T) {
	for _, tc := range []struct {
		bearing  float64
		expected Direction
	}{
		{0, North},
		{44.999, North},
		{45, East},
		{90, East},
		{134.9, East},
		{135, South},
		{180, South},
		{224.9, South},
		{225, West},
		{270, West},
		{315, West},
		{315.0001, North},
		{359.99, North},
		{360, North},
		{-90, West},
		{450, East},
		{-1, North},
	} {
		dir, err := DirectionFromBearing(tc.bearing)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, dir, test.ShouldEqual, tc.expected)
	}

	_, err := DirectionFromBearing(math.NaN())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = DirectionFromBearing(math.Inf(1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNormalizeBearing(t *testing.T) {
	test.That(t, NormalizeBearing(0), test.ShouldEqual, 0.)
	test.That(t, NormalizeBearing(360), test.ShouldEqual, 0.)
	test.That(t, NormalizeBearing(-45), test.ShouldEqual, 315.)
	test.That(t, NormalizeBearing(725), test.ShouldEqual, 5.)
}

func TestDirectionString(t *testing.T) {
	test.That(t, North.String(), test.ShouldEqual, "north")
	test.That(t, West.String(), test.ShouldEqual, "west")
	test.That(t, Direction(7).String(), test.ShouldEqual, "Direction(7)")
}

func TestBuildingPoint(t *testing.T) {
	b := Building{Latitude: 40.68, Longitude: -73.98, Occupancy: 3}
	test.That(t, b.Point().Lat(), test.ShouldEqual, 40.68)
	test.That(t, b.Point().Lng(), test.ShouldEqual, -73.98)
	test.That(t, b.String(), test.ShouldEqual, "(40.68, -73.98) x3")
}

func TestSearchBox(t *testing.T) {
	const lat, lon = 40.680692, -73.988398
	length := FootDegree * LocationRange
	half := length / 2
	for _, tc := range []struct {
		dir                            Direction
		minLat, minLon, maxLat, maxLon float64
	}{
		{North, lat, lon - half, lat + length, lon + half},
		{East, lat - half, lon, lat + half, lon + length},
		{South, lat - length, lon - half, lat, lon + half},
		{West, lat - half, lon - length, lat + half, lon},
	} {
		t.Run(tc.dir.String(), func(t *testing.T) {
			minLat, minLon, maxLat, maxLon := Bounds(SearchBox(lat, lon, tc.dir, LocationRange))
			test.That(t, minLat, test.ShouldAlmostEqual, tc.minLat, 1e-9)
			test.That(t, minLon, test.ShouldAlmostEqual, tc.minLon, 1e-9)
			test.That(t, maxLat, test.ShouldAlmostEqual, tc.maxLat, 1e-9)
			test.That(t, maxLon, test.ShouldAlmostEqual, tc.maxLon, 1e-9)
		})
	}

	// 1000 feet is about 0.0027 degrees
	minLat, _, maxLat, _ := Bounds(SearchBox(lat, lon, North, LocationRange))
	test.That(t, maxLat-minLat, test.ShouldAlmostEqual, 0.002742701671, 1e-9)
}

func TestSearchBoxEdges(t *testing.T) {
	length := FootDegree * LocationRange
	half := length / 2

	t.Run("antimeridian east", func(t *testing.T) {
		box := SearchBox(0, 179.999, East, LocationRange)
		test.That(t, CrossesAntimeridian(box), test.ShouldBeTrue)
		minLat, minLon, maxLat, maxLon := Bounds(box)
		test.That(t, minLat, test.ShouldAlmostEqual, -half, 1e-9)
		test.That(t, maxLat, test.ShouldAlmostEqual, half, 1e-9)
		test.That(t, minLon, test.ShouldAlmostEqual, 179.999, 1e-9)
		test.That(t, maxLon, test.ShouldAlmostEqual, 179.999+length-360, 1e-9)
		test.That(t, box.ContainsLatLng(s2.LatLngFromDegrees(0, -179.999)), test.ShouldBeTrue)
		test.That(t, box.ContainsLatLng(s2.LatLngFromDegrees(0, 179.9995)), test.ShouldBeTrue)
		test.That(t, box.ContainsLatLng(s2.LatLngFromDegrees(0, 0)), test.ShouldBeFalse)
	})

	t.Run("antimeridian west", func(t *testing.T) {
		box := SearchBox(0, -179.999, West, LocationRange)
		test.That(t, CrossesAntimeridian(box), test.ShouldBeTrue)
		_, minLon, _, maxLon := Bounds(box)
		test.That(t, minLon, test.ShouldAlmostEqual, -179.999-length+360, 1e-9)
		test.That(t, maxLon, test.ShouldAlmostEqual, -179.999, 1e-9)
	})

	t.Run("on the meridian", func(t *testing.T) {
		box := SearchBox(0, 180, West, LocationRange)
		test.That(t, CrossesAntimeridian(box), test.ShouldBeFalse)
		_, minLon, _, maxLon := Bounds(box)
		test.That(t, minLon, test.ShouldAlmostEqual, 180-length, 1e-9)
		test.That(t, maxLon, test.ShouldAlmostEqual, 180, 1e-9)
	})

	t.Run("north pole", func(t *testing.T) {
		minLat, minLon, maxLat, maxLon := Bounds(SearchBox(89.999, 0, North, LocationRange))
		test.That(t, minLat, test.ShouldAlmostEqual, 89.999, 1e-9)
		test.That(t, maxLat, test.ShouldAlmostEqual, 90, 1e-9)
		test.That(t, minLon, test.ShouldAlmostEqual, -half, 1e-9)
		test.That(t, maxLon, test.ShouldAlmostEqual, half, 1e-9)
	})

	t.Run("south pole", func(t *testing.T) {
		minLat, _, maxLat, _ := Bounds(SearchBox(-89.999, 0, South, LocationRange))
		test.That(t, minLat, test.ShouldAlmostEqual, -90, 1e-9)
		test.That(t, maxLat, test.ShouldAlmostEqual, -89.999, 1e-9)
	})

	t.Run("wider than the globe", func(t *testing.T) {
		box := SearchBox(0, 0, East, 400/FootDegree)
		test.That(t, box.Lng.IsFull(), test.ShouldBeTrue)
	})
}

// sortFixture is a 3x3 lattice of buildings with distinct coordinates, in arbitrary order.
func sortFixture() []Building {
	return []Building{
		{Latitude: 2, Longitude: 1, Occupancy: 21},
		{Latitude: 1, Longitude: 3, Occupancy: 13},
		{Latitude: 3, Longitude: 2, Occupancy: 32},
		{Latitude: 1, Longitude: 1, Occupancy: 11},
		{Latitude: 2, Longitude: 3, Occupancy: 23},
		{Latitude: 3, Longitude: 1, Occupancy: 31},
		{Latitude: 1, Longitude: 2, Occupancy: 12},
		{Latitude: 3, Longitude: 3, Occupancy: 33},
		{Latitude: 2, Longitude: 2, Occupancy: 22},
	}
}

func occupancies(buildings []Building) []int {
	out := make([]int, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, b.Occupancy)
	}
	return out
}

func TestSortForDirection(t *testing.T) {
	// Occupancy encodes the position as <lat><lon>.
	for _, tc := range []struct {
		bearing  float64
		expected []int
	}{
		{0, []int{11, 12, 13, 21, 22, 23, 31, 32, 33}},
		{90, []int{33, 23, 13, 32, 22, 12, 31, 21, 11}},
		{180, []int{33, 32, 31, 23, 22, 21, 13, 12, 11}},
		{270, []int{11, 21, 31, 12, 22, 32, 13, 23, 33}},
	} {
		dir, err := DirectionFromBearing(tc.bearing)
		test.That(t, err, test.ShouldBeNil)
		buildings := sortFixture()
		SortForDirection(buildings, dir)
		test.That(t, occupancies(buildings), test.ShouldResemble, tc.expected)
	}
}

func TestSortForDirectionKeepsDuplicates(t *testing.T) {
	buildings := []Building{
		{Latitude: 1, Longitude: 1, Occupancy: 1},
		{Latitude: 1, Longitude: 1, Occupancy: 2},
		{Latitude: 0, Longitude: 1, Occupancy: 3},
	}
	SortForDirection(buildings, North)
	test.That(t, occupancies(buildings), test.ShouldResemble, []int{3, 1, 2})
}
