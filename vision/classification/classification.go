// Package classification has the types returned by image classifiers and filters over them.
package classification

import (
	"github.com/samber/lo"
)

// Classification is a single labeled guess about an image.
type Classification interface {
	Score() float64
	Label() string
}

// Classifications is a list of Classification.
type Classifications []Classification

// NewClassification creates a simple 2D classification.
func NewClassification(score float64, label string) Classification {
	return &classification2D{score, label}
}

type classification2D struct {
	score float64
	label string
}

// Score returns the confidence of the classification.
func (c *classification2D) Score() float64 {
	return c.score
}

// Label returns the class label of the classification.
func (c *classification2D) Label() string {
	return c.label
}

// ClassifierResult is the output of one named classifier for one image.
type ClassifierResult struct {
	ClassifierID string
	Classes      Classifications
}

// ContainsLabel reports whether any result keeps a class once scores below threshold and labels
// other than label (case-insensitive) are filtered out. An empty label keeps every label.
func ContainsLabel(results []ClassifierResult, label string, threshold float64) bool {
	filtered := Apply(results, NewScoreFilter(threshold), NewLabelFilter(label))
	return lo.ContainsBy(filtered, func(result ClassifierResult) bool {
		return len(result.Classes) > 0
	})
}
