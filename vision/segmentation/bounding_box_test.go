package segmentation

import (
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func TestBoundingBoxes(t *testing.T) {
	g := mustBoolGrid(t, [][]bool{
		{F, T, F, F, T},
		{T, F, F, T, T},
		{T, T, F, F, F},
		{F, F, F, T, F},
	})
	labels := ExtractBlobs(g)
	boxes := BoundingBoxes(labels, 32)
	test.That(t, boxes, test.ShouldResemble, []Coordinates{
		NewCoordinates(32, 0, 32, 0),
		NewCoordinates(96, 0, 128, 32),
		NewCoordinates(0, 32, 32, 64),
		NewCoordinates(96, 96, 96, 96),
	})
	test.That(t, boxes[1].String(), test.ShouldEqual, "(96, 0)-(128, 32)")
}

func TestBoundingBoxesVerticalBar(t *testing.T) {
	g := mustBoolGrid(t, [][]bool{
		{F, F, T, F},
		{F, F, T, F},
		{F, F, T, F},
		{F, F, T, F},
	})
	boxes := BoundingBoxes(ExtractBlobs(g), 10)
	test.That(t, boxes, test.ShouldResemble, []Coordinates{NewCoordinates(20, 0, 20, 30)})
}

func TestBoundingBoxesEmpty(t *testing.T) {
	boxes := BoundingBoxes(ExtractBlobs(NewBoolGrid(2, 2)), 32)
	test.That(t, boxes, test.ShouldNotBeNil)
	test.That(t, boxes, test.ShouldBeEmpty)
}

func TestBoundingBoxesContainAndAreMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		g := randomGrid(rng, 1+rng.Intn(10), 1+rng.Intn(10), 0.4)
		labels := ExtractBlobs(g)
		boxes := BoundingBoxes(labels, 1)
		test.That(t, boxes, test.ShouldHaveLength, labels.MaxLabel)
		for idx, members := range labels.Members() {
			box := boxes[idx]
			test.That(t, box.TopLeft.X, test.ShouldBeLessThanOrEqualTo, box.BottomRight.X)
			test.That(t, box.TopLeft.Y, test.ShouldBeLessThanOrEqualTo, box.BottomRight.Y)
			var touchesLeft, touchesRight, touchesTop, touchesBottom bool
			for _, m := range members {
				test.That(t, m.X, test.ShouldBeBetweenOrEqual, box.TopLeft.X, box.BottomRight.X)
				test.That(t, m.Y, test.ShouldBeBetweenOrEqual, box.TopLeft.Y, box.BottomRight.Y)
				touchesLeft = touchesLeft || m.X == box.TopLeft.X
				touchesRight = touchesRight || m.X == box.BottomRight.X
				touchesTop = touchesTop || m.Y == box.TopLeft.Y
				touchesBottom = touchesBottom || m.Y == box.BottomRight.Y
			}
			// minimal: every edge of the box touches a member
			test.That(t, touchesLeft && touchesRight && touchesTop && touchesBottom, test.ShouldBeTrue)
		}
	}
}
