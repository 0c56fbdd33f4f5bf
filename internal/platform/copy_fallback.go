//go:build !linux && !darwin

package platform

// copyFast falls back to read/write on platforms with no kernel-assisted copy.
func copyFast(params CopyRangeParams) (CopyResult, error) {
	preallocate(params.DstFd, copyLength(params))
	return copyReadWrite(params)
}
