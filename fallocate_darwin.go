//go:build darwin

package sortlib

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for file and sets its length.
// On macOS, uses fcntl F_PREALLOCATE for space reservation.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  0,
		Length:  size,
	}
	if err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst); err != nil {
		return unix.Ftruncate(int(file.Fd()), size)
	}
	// F_PREALLOCATE only reserves space; set the size separately.
	return unix.Ftruncate(int(file.Fd()), size)
}
