package utils

import (
	"runtime"
)

// ParallelFactor controls the max level of parallelization for CPU bound work. This might be
// useful to set in tests where too much parallelism actually slows tests down in aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// DefaultIOWorkers is the default number of concurrent calls made to an external service for one
// request. Those calls are network bound, so it is a multiple of ParallelFactor.
func DefaultIOWorkers() int {
	return ParallelFactor * 4
}
