//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves length bytes for the destination before the copy
// starts. Advisory: filesystems without fallocate support fall through
// to plain writes, and fallocate rejects zero-length requests.
//
//nolint:gosec // G115: fd values are small non-negative integers
func preallocate(f *os.File, length int64) {
	if length <= 0 {
		return
	}
	//nolint:errcheck // advisory; unsupported filesystems return ENOTSUP
	unix.Fallocate(int(f.Fd()), 0, 0, length)
}
