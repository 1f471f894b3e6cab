package classification

import "strings"

// Postprocessor defines a function that filters/modifies on an incoming array of Classifications.
type Postprocessor func(Classifications) Classifications

// NewScoreFilter returns a function that filters out classifications below a certain confidence
// score.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in Classifications) Classifications {
		out := make(Classifications, 0, len(in))
		for _, c := range in {
			if c.Score() >= conf {
				out = append(out, c)
			}
		}
		return out
	}
}

// NewLabelFilter returns a function that filters out classifications without one of the chosen labels.
// Labels are compared case-insensitively. Does not filter when labels is empty.
func NewLabelFilter(labels ...string) Postprocessor {
	theLabels := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		theLabels[strings.ToLower(l)] = struct{}{}
	}
	return func(in Classifications) Classifications {
		if len(theLabels) < 1 {
			return in
		}
		out := make(Classifications, 0, len(in))
		for _, c := range in {
			if _, ok := theLabels[strings.ToLower(c.Label())]; ok {
				out = append(out, c)
			}
		}
		return out
	}
}

// Apply runs the postprocessors over every result in order and returns the filtered copies.
// Results left without classes are kept so callers can still tell which classifiers answered.
func Apply(results []ClassifierResult, posts ...Postprocessor) []ClassifierResult {
	out := make([]ClassifierResult, 0, len(results))
	for _, result := range results {
		classes := result.Classes
		for _, p := range posts {
			classes = p(classes)
		}
		out = append(out, ClassifierResult{ClassifierID: result.ClassifierID, Classes: classes})
	}
	return out
}
