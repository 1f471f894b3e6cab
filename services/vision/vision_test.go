package vision_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/atomic"
	"go.viam.com/test"

	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	"go.viam.com/landmark/services/vision"
	"go.viam.com/landmark/testutils/inject"
	"go.viam.com/landmark/vision/classification"
)

// tileGrid builds a grid whose tile data is just its (row, col) position.
func tileGrid(rows, cols int) *rimage.TileGrid {
	grid := &rimage.TileGrid{Rows: rows, Cols: cols, Side: 1}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			grid.Tiles = append(grid.Tiles, rimage.Tile{
				Row:    r,
				Col:    c,
				Data:   []byte{byte(r), byte(c)},
				Format: rimage.TileFormatPNG,
			})
		}
	}
	return grid
}

func result(label string, score float64) classification.ClassifierResult {
	return classification.ClassifierResult{
		ClassifierID: "default",
		Classes:      classification.Classifications{classification.NewClassification(score, label)},
	}
}

func defaultOptions() vision.ClassifyOptions {
	return vision.ClassifyOptions{Label: "building", Threshold: 0.6, Workers: 4}
}

func TestIsBuilding(t *testing.T) {
	tile := &tileGrid(1, 1).Tiles[0]
	for _, tc := range []struct {
		name     string
		results  []classification.ClassifierResult
		expected bool
	}{
		{"no classifiers", []classification.ClassifierResult{}, false},
		{"exact label", []classification.ClassifierResult{result("building", 0.9)}, true},
		{"case insensitive", []classification.ClassifierResult{result("Building", 0.6)}, true},
		{"below threshold", []classification.ClassifierResult{result("building", 0.59)}, false},
		{"other label", []classification.ClassifierResult{result("tree", 0.99)}, false},
		{
			"second classifier",
			[]classification.ClassifierResult{result("sky", 0.9), result("BUILDING", 0.7)},
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			classifier := &inject.Classifier{
				ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
					test.That(t, mimeType, test.ShouldEqual, "image/png")
					return tc.results, nil
				},
			}
			isBuilding, err := vision.IsBuilding(context.Background(), classifier, tile, defaultOptions())
			test.That(t, err, test.ShouldBeNil)
			test.That(t, isBuilding, test.ShouldEqual, tc.expected)
		})
	}

	failing := &inject.Classifier{
		ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
			return nil, errors.New("boom")
		},
	}
	_, err := vision.IsBuilding(context.Background(), failing, tile, defaultOptions())
	test.That(t, err, test.ShouldWrap, vision.ErrClassificationUnavailable)
	test.That(t, err.Error(), test.ShouldContainSubstring, "boom")
}

func TestIsBuildingTimeout(t *testing.T) {
	tile := &tileGrid(1, 1).Tiles[0]
	slow := &inject.Classifier{
		ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	opts := defaultOptions()
	opts.Timeout = 10 * time.Millisecond
	isBuilding, err := vision.IsBuilding(context.Background(), slow, tile, opts)
	test.That(t, isBuilding, test.ShouldBeFalse)
	test.That(t, err, test.ShouldWrap, vision.ErrClassificationUnavailable)
	test.That(t, err, test.ShouldWrap, context.DeadlineExceeded)
}

func TestClassifyTiles(t *testing.T) {
	// building tiles form a vertical bar in column 2
	grid := tileGrid(4, 4)
	classifier := &inject.Classifier{
		ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
			if image[1] == 2 {
				return []classification.ClassifierResult{result("building", 0.95)}, nil
			}
			return []classification.ClassifierResult{}, nil
		},
	}
	out, err := vision.ClassifyTiles(context.Background(), classifier, grid, defaultOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, classifier.Calls(), test.ShouldEqual, 16)
	test.That(t, out.Rows, test.ShouldEqual, 4)
	test.That(t, out.Cols, test.ShouldEqual, 4)
	test.That(t, out.Cells, test.ShouldResemble, []bool{
		false, false, true, false,
		false, false, true, false,
		false, false, true, false,
		false, false, true, false,
	})
}

func TestClassifyTilesFailOpen(t *testing.T) {
	grid := tileGrid(2, 3)
	classifier := &inject.Classifier{
		ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
			if image[0] == 1 && image[1] == 1 {
				return nil, errors.New("service unavailable")
			}
			return []classification.ClassifierResult{result("building", 1)}, nil
		},
	}
	logger, logs := logging.NewObservedTestLogger(t)
	out, err := vision.ClassifyTiles(context.Background(), classifier, grid, defaultOptions(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Rows, test.ShouldEqual, 2)
	test.That(t, out.Cells, test.ShouldResemble, []bool{
		true, true, true,
		true, false, true,
	})

	warnings := logs.FilterMessageSnippet("tile classification failed")
	test.That(t, warnings.Len(), test.ShouldEqual, 1)
	fields := warnings.All()[0].ContextMap()
	test.That(t, fields["row"], test.ShouldEqual, 1)
	test.That(t, fields["col"], test.ShouldEqual, 1)
}

func TestClassifyTilesBoundedConcurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	classifier := &inject.Classifier{
		ClassifyFunc: func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				current := maxInFlight.Load()
				if n <= current || maxInFlight.CompareAndSwap(current, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			return []classification.ClassifierResult{}, nil
		},
	}
	opts := defaultOptions()
	opts.Workers = 3
	out, err := vision.ClassifyTiles(context.Background(), classifier, tileGrid(5, 5), opts, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Rows, test.ShouldEqual, 5)
	test.That(t, out.Cols, test.ShouldEqual, 5)
	test.That(t, classifier.Calls(), test.ShouldEqual, 25)
	test.That(t, maxInFlight.Load(), test.ShouldBeLessThanOrEqualTo, 3)
	// every call has returned before ClassifyTiles does
	test.That(t, inFlight.Load(), test.ShouldEqual, 0)
}

func TestClassifyTilesRateLimited(t *testing.T) {
	opts := defaultOptions()
	opts.RatePerSecond = 200
	classifier := &inject.Classifier{}
	start := time.Now()
	_, err := vision.ClassifyTiles(context.Background(), classifier, tileGrid(1, 5), opts, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	// the first call is free, the next four wait 5ms each
	test.That(t, time.Since(start), test.ShouldBeGreaterThanOrEqualTo, 15*time.Millisecond)
}

func TestClassifyTilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := vision.ClassifyTiles(ctx, &inject.Classifier{}, tileGrid(3, 3), defaultOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldWrap, context.Canceled)
}

func TestClassifyTilesEmptyGrid(t *testing.T) {
	classifier := &inject.Classifier{}
	out, err := vision.ClassifyTiles(context.Background(), classifier, tileGrid(0, 0), defaultOptions(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Cells, test.ShouldBeEmpty)
	test.That(t, classifier.Calls(), test.ShouldEqual, 0)
}
