//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// copyFast tries the most efficient copy method available on Linux,
// falling through on unsupported/cross-device errors. A strategy that
// already wrote bytes is never abandoned mid-stream.
func copyFast(params CopyRangeParams) (CopyResult, error) {
	preallocate(params.DstFd, copyLength(params))

	// Try copy_file_range first.
	result, err := copyFileRange(params)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	// Try sendfile.
	result, err = copySendfile(params)
	if err == nil {
		return result, nil
	}
	if result.BytesWritten > 0 || !isFallbackErr(err) {
		return result, err
	}

	// Fall back to read/write.
	return copyReadWrite(params)
}

func copyFileRange(params CopyRangeParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	remaining := copyLength(params)
	roff := params.SrcOffset
	var woff int64 // track files start at byte zero

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(srcFd.Fd()), &roff, int(params.DstFd.Fd()), &woff, int(remaining), 0)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: CopyFileRange}, nil
}

// copySendfile writes at the destination's file position, which is zero
// for the freshly created track file.
func copySendfile(params CopyRangeParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	remaining := copyLength(params)
	offset := params.SrcOffset

	var totalWritten int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(params.DstFd.Fd()), int(srcFd.Fd()), &offset, int(remaining))
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: Sendfile}, nil
}

// isFallbackErr returns true if err should trigger a fallback to the next copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	// Also handle wrapped errors.
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
