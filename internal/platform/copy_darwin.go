//go:build darwin

package platform

import (
	"golang.org/x/sys/unix"
)

// copyFast tries clonefile first, then falls back to read/write on
// macOS. Cloning only applies when the range covers the entire source,
// which is the single-track-per-file case.
func copyFast(params CopyRangeParams) (CopyResult, error) {
	whole := params.SrcOffset == 0 && (params.Length == 0 || params.Length == params.SrcSize)
	if whole {
		err := unix.Clonefile(params.SrcPath, params.DstFd.Name(), 0)
		if err == nil {
			return CopyResult{BytesWritten: params.SrcSize, Method: Clonefile}, nil
		}
		if !isFallbackCloneErr(err) {
			return CopyResult{}, err
		}
	}

	preallocate(params.DstFd, copyLength(params))
	return copyReadWrite(params)
}

func isFallbackCloneErr(err error) bool {
	switch err {
	case unix.ENOTSUP, unix.EXDEV, unix.EEXIST:
		return true
	}
	return false
}
