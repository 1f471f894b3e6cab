// Package vision asks an external image classifier about every tile of a photo and reduces the
// answers to a grid of building / not-building cells.
package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	"go.viam.com/landmark/vision/classification"
	"go.viam.com/landmark/vision/segmentation"
)

// DefaultLabel is the class name that marks a tile as a building.
const DefaultLabel = "building"

// ErrClassificationUnavailable is wrapped around every failed or timed out classifier call.
var ErrClassificationUnavailable = errors.New("classification unavailable")

// NewClassificationUnavailableError wraps cause so that errors.Is(err, ErrClassificationUnavailable)
// holds while the cause stays reachable.
func NewClassificationUnavailableError(cause error) error {
	return fmt.Errorf("%w: %w", ErrClassificationUnavailable, cause)
}

// Classifier is the external image classification collaborator. It classifies one encoded image
// and returns one result per classifier that answered. Zero results is a valid answer.
type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error)
}

// ClassifyOptions controls how tiles are reduced to booleans and how hard the classifier is driven.
type ClassifyOptions struct {
	// Label is the class name looked for, compared case-insensitively.
	Label string
	// Threshold is the minimum score for Label to count.
	Threshold float64
	// Workers bounds the number of in-flight classifier calls.
	Workers int
	// RatePerSecond caps classifier calls per second. 0 means unlimited.
	RatePerSecond float64
	// Timeout bounds each classifier call. 0 means no per-call timeout.
	Timeout time.Duration
}

func (opts ClassifyOptions) label() string {
	if opts.Label == "" {
		return DefaultLabel
	}
	return opts.Label
}

func (opts ClassifyOptions) limiter() *rate.Limiter {
	if opts.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
}

// IsBuilding classifies a single tile. It returns true iff some classifier reported the label at
// or above the threshold. Any classifier failure is returned wrapped in
// ErrClassificationUnavailable.
func IsBuilding(ctx context.Context, classifier Classifier, tile *rimage.Tile, opts ClassifyOptions) (bool, error) {
	if opts.Timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	results, err := classifier.Classify(ctx, tile.Data, tile.Format.MimeType())
	if err != nil {
		return false, NewClassificationUnavailableError(err)
	}
	return classification.ContainsLabel(results, opts.label(), opts.Threshold), nil
}

// ClassifyTiles classifies every tile of grid concurrently, at most opts.Workers at a time, and
// returns once all of them have finished. A tile whose classification fails is logged and counted
// as not a building. Only cancellation of ctx makes ClassifyTiles fail.
func ClassifyTiles(
	ctx context.Context,
	classifier Classifier,
	grid *rimage.TileGrid,
	opts ClassifyOptions,
	logger logging.Logger,
) (*segmentation.BoolGrid, error) {
	ctx, span := trace.StartSpan(ctx, "landmark::classifyTiles")
	defer span.End()

	out := segmentation.NewBoolGrid(grid.Rows, grid.Cols)
	limiter := opts.limiter()
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range grid.Tiles {
		tile := &grid.Tiles[i]
		group.Go(func() error {
			if err := limiter.Wait(groupCtx); err != nil {
				return err
			}
			isBuilding, err := IsBuilding(groupCtx, classifier, tile, opts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warnw("tile classification failed, treating it as not a building",
					"row", tile.Row, "col", tile.Col, "error", err)
				return nil
			}
			// every goroutine owns a distinct cell
			out.Set(tile.Row, tile.Col, isBuilding)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "classifying tiles")
	}
	return out, nil
}
