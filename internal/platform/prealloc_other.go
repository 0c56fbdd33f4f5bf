//go:build !linux

package platform

import "os"

// preallocate is a no-op where fallocate is unavailable; the copy loop
// extends the file as it writes.
func preallocate(_ *os.File, _ int64) {}
