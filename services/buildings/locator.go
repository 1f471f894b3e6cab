package buildings

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"

	"go.viam.com/landmark/logging"
)

// ErrRegistryUnavailable is wrapped around failed registry queries.
var ErrRegistryUnavailable = errors.New("building registry unavailable")

// Registry is the external building registry. Query returns the raw records located inside box,
// restricted to fields. A field a record does not have is absent from its map.
type Registry interface {
	Query(ctx context.Context, box s2.Rect, fields []string) ([]map[string]interface{}, error)
}

// Locator finds the buildings in front of an observer.
type Locator struct {
	registry  Registry
	rangeFeet float64
	logger    logging.Logger
}

// NewLocator returns a Locator searching rangeFeet in front of the observer.
func NewLocator(registry Registry, rangeFeet float64, logger logging.Logger) *Locator {
	if rangeFeet <= 0 {
		rangeFeet = LocationRange
	}
	return &Locator{registry: registry, rangeFeet: rangeFeet, logger: logger}
}

// Locate returns at most n buildings in front of an observer at (lat, lon) facing bearing, in
// the order of SortForDirection. A failing registry is not an error: it is logged and yields no
// buildings. Only invalid arguments are errors.
func (l *Locator) Locate(ctx context.Context, lat, lon, bearing float64, n int) ([]Building, error) {
	ctx, span := trace.StartSpan(ctx, "landmark::locateBuildings")
	defer span.End()

	if n < 0 {
		return nil, fmt.Errorf("candidate count cannot be negative, got %d", n)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return nil, errors.New("location must be a number")
	}
	dir, err := DirectionFromBearing(bearing)
	if err != nil {
		return nil, err
	}
	box := SearchBox(lat, lon, dir, l.rangeFeet)
	if n == 0 {
		return []Building{}, nil
	}

	records, err := l.registry.Query(ctx, box, RecordFields)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		minLat, minLon, maxLat, maxLon := Bounds(box)
		l.logger.Warnw("no candidate buildings",
			"error", fmt.Errorf("%w: %w", ErrRegistryUnavailable, err),
			"direction", dir.String(),
			"min_lat", minLat, "min_lon", minLon, "max_lat", maxLat, "max_lon", maxLon)
		return []Building{}, nil
	}

	candidates := lo.FilterMap(records, func(record map[string]interface{}, idx int) (Building, bool) {
		building, err := ParseRecord(record)
		if err != nil {
			l.logger.Debugw("dropping registry record", "index", idx, "error", err)
			return Building{}, false
		}
		return building, true
	})
	SortForDirection(candidates, dir)
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	l.logger.Debugw("located buildings",
		"direction", dir.String(), "records", len(records), "candidates", len(candidates))
	return candidates, nil
}
