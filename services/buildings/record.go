package buildings

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	rutils "go.viam.com/landmark/utils"
)

// Registry record fields.
const (
	LatitudeField  = "latitude"
	LongitudeField = "longitude"
	OccupancyField = "ex_dwelling_unit"
)

// RecordFields are the fields requested from the registry. A record must carry exactly these.
var RecordFields = []string{LatitudeField, LongitudeField, OccupancyField}

// ErrMalformedRecord is wrapped around every rejected registry record.
var ErrMalformedRecord = errors.New("malformed registry record")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// ParseRecord converts a raw registry record into a Building. The record must have exactly the
// three RecordFields. Values may be JSON numbers or numeric strings.
func ParseRecord(record map[string]interface{}) (Building, error) {
	if len(record) != len(RecordFields) {
		return Building{}, malformed("expected %d fields, got %d", len(RecordFields), len(record))
	}
	lat, err := floatField(record, LatitudeField)
	if err != nil {
		return Building{}, err
	}
	lon, err := floatField(record, LongitudeField)
	if err != nil {
		return Building{}, err
	}
	occupancy, err := floatField(record, OccupancyField)
	if err != nil {
		return Building{}, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Building{}, malformed("location (%v, %v) out of range", lat, lon)
	}
	if occupancy < 0 || occupancy != math.Trunc(occupancy) {
		return Building{}, malformed("%s must be a non-negative integer, got %v", OccupancyField, occupancy)
	}
	return Building{Latitude: lat, Longitude: lon, Occupancy: int(occupancy)}, nil
}

func floatField(record map[string]interface{}, field string) (float64, error) {
	raw, ok := record[field]
	if !ok {
		return 0, malformed("missing %s", field)
	}
	switch raw.(type) {
	case json.Number, string, float64, int:
	default:
		return 0, malformed("%s: %v", field, rutils.NewUnexpectedTypeError(json.Number(""), raw))
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, malformed("%s: %v", field, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, malformed("%s is not finite", field)
	}
	return value, nil
}
