// Package register registers all classifier types.
package register

import (
	// for classifiers.
	_ "go.viam.com/landmark/services/vision/fake"
	_ "go.viam.com/landmark/services/vision/watson"
)
