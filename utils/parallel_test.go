package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestParallelFactor(t *testing.T) {
	test.That(t, ParallelFactor, test.ShouldBeGreaterThan, 0)
	test.That(t, DefaultIOWorkers(), test.ShouldEqual, 4*ParallelFactor)
}
