//go:build !linux && !darwin

package sortlib

import "os"

// fallocateFile sets the file length. Platforms without a native
// preallocation call may not reserve the blocks themselves.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
