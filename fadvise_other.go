//go:build !linux

package sortlib

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(fd int, offset, length int64) {}
