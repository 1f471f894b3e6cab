// Package landmark is the building locating pipeline: it tiles a photo, classifies every tile,
// groups building tiles into blobs and pairs each blob's bounding box with a building in front of
// the photographer.
package landmark

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/sync/errgroup"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	"go.viam.com/landmark/services/buildings"
	"go.viam.com/landmark/services/vision"
	"go.viam.com/landmark/vision/segmentation"
)

// ErrInvalidRequest is wrapped around every rejected request parameter.
var ErrInvalidRequest = errors.New("invalid request")

// Request is one photo and where it was taken from.
type Request struct {
	// Image is the encoded photo.
	Image []byte
	// Latitude and Longitude of the photographer, in degrees.
	Latitude  float64
	Longitude float64
	// Bearing is the direction the camera faces, in degrees clockwise from north.
	Bearing float64
}

// Validate checks the request parameters. It does not look at the image.
func (r *Request) Validate() error {
	switch {
	case math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90:
		return fmt.Errorf("%w: lat must be in [-90, 90], got %v", ErrInvalidRequest, r.Latitude)
	case math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180:
		return fmt.Errorf("%w: lon must be in [-180, 180], got %v", ErrInvalidRequest, r.Longitude)
	case math.IsNaN(r.Bearing) || math.IsInf(r.Bearing, 0):
		return fmt.Errorf("%w: bearing must be a finite number of degrees, got %v", ErrInvalidRequest, r.Bearing)
	}
	return nil
}

// BuildingLocator returns up to n buildings in front of an observer, in matching order.
type BuildingLocator interface {
	Locate(ctx context.Context, lat, lon, bearing float64, n int) ([]buildings.Building, error)
}

// Service runs the pipeline. It holds no per-request state and is safe for concurrent use.
type Service struct {
	classifier vision.Classifier
	locator    BuildingLocator
	tiling     config.TilingConfig
	opts       vision.ClassifyOptions
	logger     logging.Logger
}

// New returns a Service. tiling must be validated.
func New(
	classifier vision.Classifier,
	locator BuildingLocator,
	tiling config.TilingConfig,
	opts vision.ClassifyOptions,
	logger logging.Logger,
) *Service {
	return &Service{
		classifier: classifier,
		locator:    locator,
		tiling:     tiling,
		opts:       opts,
		logger:     logger,
	}
}

// Locate finds the buildings in the photo. Only an invalid request, an undecodable image
// (*rimage.DecodeError) or cancellation of ctx fail it; classifier and registry outages degrade
// to fewer results.
func (s *Service) Locate(ctx context.Context, req Request) ([]Box, error) {
	ctx, span := trace.StartSpan(ctx, "landmark::Locate")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	img, err := rimage.DecodeImage(req.Image, s.tiling.MaxPixels)
	if err != nil {
		return nil, err
	}
	tiles, err := rimage.TileImage(img, s.tiling.GridPix, s.tiling.TileFormat)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("tiled image",
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "rows", tiles.Rows, "cols", tiles.Cols)

	// Classification and the building search are independent until matching. There can never be
	// more blobs than tiles, so that bounds the candidates needed.
	var (
		mask       *segmentation.BoolGrid
		candidates []buildings.Building
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		mask, err = vision.ClassifyTiles(groupCtx, s.classifier, tiles, s.opts, s.logger)
		return err
	})
	group.Go(func() error {
		var err error
		candidates, err = s.locator.Locate(groupCtx, req.Latitude, req.Longitude, req.Bearing, tiles.Len())
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if !s.tiling.SkipRotation {
		mask = segmentation.RotateClockwise(mask)
	}
	labels := segmentation.ExtractBlobs(mask)
	boxes := segmentation.BoundingBoxes(labels, s.tiling.GridPix)

	results := Match(boxes, candidates)
	observer := buildings.Building{Latitude: req.Latitude, Longitude: req.Longitude}.Point()
	for i := range results {
		// GreatCircleDistance is in kilometers.
		results[i].DistanceMeters = observer.GreatCircleDistance(results[i].Building.Point()) * 1000
	}
	s.logger.Infow("located buildings",
		"tiles", tiles.Len(), "blobs", labels.MaxLabel, "candidates", len(candidates), "matches", len(results))
	return results, nil
}
