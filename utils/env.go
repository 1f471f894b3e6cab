package utils

const (
	// LandmarkEnvVarPrefix is the prefix for all landmark-related environment variables.
	LandmarkEnvVarPrefix = "LANDMARK_"

	// ConfigPathEnvVar is the environment variable that points at the config file when
	// --config is not given.
	ConfigPathEnvVar = "LANDMARK_CONFIG"

	// ClassifierAPIKeyEnvVar is the conventional variable referenced from config files as
	// ${LANDMARK_CLASSIFIER_API_KEY} to keep the classifier credentials out of the file.
	//nolint:gosec
	ClassifierAPIKeyEnvVar = "LANDMARK_CLASSIFIER_API_KEY"

	// RegistryAppTokenEnvVar is the conventional variable for the building registry app token.
	//nolint:gosec
	RegistryAppTokenEnvVar = "LANDMARK_REGISTRY_APP_TOKEN"
)
