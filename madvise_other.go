//go:build !linux && !darwin

package sortlib

// adviseSequential is a no-op on platforms without madvise.
func adviseSequential(data []byte) {}
