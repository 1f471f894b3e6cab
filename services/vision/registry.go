package vision

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
)

// A ClassifierConstructor builds a Classifier from its validated config.
type ClassifierConstructor func(cfg *config.ClassifierConfig, logger logging.Logger) (Classifier, error)

var (
	registryMu   sync.RWMutex
	constructors = map[string]ClassifierConstructor{}
)

// RegisterClassifier registers a classifier type. It panics if the type is already registered,
// which can only happen from conflicting init functions.
func RegisterClassifier(classifierType string, constructor ClassifierConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := constructors[classifierType]; ok {
		panic(errors.Errorf("classifier type %q already registered", classifierType))
	}
	constructors[classifierType] = constructor
}

// RegisteredClassifierTypes returns the registered classifier types in sorted order.
func RegisteredClassifierTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := lo.Keys(constructors)
	sort.Strings(types)
	return types
}

// NewClassifier builds the classifier named by cfg.Type.
func NewClassifier(cfg *config.ClassifierConfig, logger logging.Logger) (Classifier, error) {
	registryMu.RLock()
	constructor, ok := constructors[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown classifier type %q, registered types are %v", cfg.Type, RegisteredClassifierTypes())
	}
	classifier, err := constructor(cfg, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "could not build %s classifier", cfg.Type)
	}
	return classifier, nil
}

// OptionsFromConfig returns the tile classification options described by cfg.
func OptionsFromConfig(cfg *config.ClassifierConfig) ClassifyOptions {
	return ClassifyOptions{
		Label:         cfg.Label,
		Threshold:     cfg.Threshold,
		Workers:       cfg.Workers,
		RatePerSecond: cfg.RatePerSecond,
		Timeout:       cfg.Timeout,
	}
}
