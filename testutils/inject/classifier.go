package inject

import (
	"context"

	"go.uber.org/atomic"

	"go.viam.com/landmark/services/vision"
	"go.viam.com/landmark/vision/classification"
)

// Classifier is an injected classifier.
type Classifier struct {
	vision.Classifier
	ClassifyFunc func(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error)

	calls atomic.Int64
}

// Classify calls the injected Classify or the real version. With neither it reports no
// classifiers.
func (c *Classifier) Classify(ctx context.Context, image []byte, mimeType string) ([]classification.ClassifierResult, error) {
	c.calls.Add(1)
	if c.ClassifyFunc == nil {
		if c.Classifier == nil {
			return []classification.ClassifierResult{}, nil
		}
		return c.Classifier.Classify(ctx, image, mimeType)
	}
	return c.ClassifyFunc(ctx, image, mimeType)
}

// Calls returns how many times Classify was called.
func (c *Classifier) Calls() int {
	return int(c.calls.Load())
}
