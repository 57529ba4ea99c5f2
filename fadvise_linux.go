//go:build linux

package sortlib

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that the file will be read
// sequentially, enlarging read-ahead for FileMerger inputs.
// Best-effort: errors are silently ignored.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
