package util

import "runtime"

// GetOptimalPoolSize returns the worker count for CPU-bound file processing.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// The same value sizes the tree-sitter parser pool so that extraction workers
// never queue behind a parser.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
