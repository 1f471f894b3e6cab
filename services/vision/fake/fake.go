// Package fake implements a classifier that needs no external service, for offline runs and
// end to end tests.
package fake

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/rimage"
	"go.viam.com/landmark/services/vision"
	"go.viam.com/landmark/vision/classification"
)

// ClassifierType is the config type of the luminance classifier.
const ClassifierType = "fake"

// ClassifierID is reported as the id of every fake classifier result.
const ClassifierID = "fake"

func init() {
	vision.RegisterClassifier(ClassifierType, func(cfg *config.ClassifierConfig, logger logging.Logger) (vision.Classifier, error) {
		logger.Infow("using the fake luminance classifier", "max_luminance", cfg.FakeLuminance, "label", cfg.Label)
		return NewLuminance(cfg.FakeLuminance, cfg.Label), nil
	})
}

// Luminance reports a tile as label, with score 1, when its mean luminance is below MaxLuminance.
// Brighter tiles get no classifier result at all, like a remote classifier with nothing to say.
type Luminance struct {
	MaxLuminance float64
	Label        string
}

// NewLuminance returns a Luminance classifier.
func NewLuminance(maxLuminance float64, label string) *Luminance {
	return &Luminance{MaxLuminance: maxLuminance, Label: label}
}

// Classify decodes the tile and compares its mean luminance to MaxLuminance.
func (l *Luminance) Classify(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := rimage.DecodeImage(image, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "fake classifier cannot read %s tile", mimeType)
	}
	if rimage.MeanLuminance(img) >= l.MaxLuminance {
		return []classification.ClassifierResult{}, nil
	}
	return []classification.ClassifierResult{{
		ClassifierID: ClassifierID,
		Classes:      classification.Classifications{classification.NewClassification(1, l.Label)},
	}}, nil
}
