//go:build linux || darwin

package sortlib

import "golang.org/x/sys/unix"

// adviseSequential tells the kernel a mapped region will be scanned front
// to back. Best-effort: errors are silently ignored.
func adviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
