//go:build linux

package sortlib

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for file and sets its length, so a
// merge that cannot fit on disk fails before any record is written.
func fallocateFile(file *os.File, size int64) error {
	// Mode 0 extends the file length along with the blocks.
	if err := unix.Fallocate(int(file.Fd()), 0, 0, size); err != nil {
		// Fallback to ftruncate if fallocate fails (e.g., NFS, tmpfs on old kernels)
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return nil
}
