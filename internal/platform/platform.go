package platform

import "os"

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
	Clonefile                // macOS clonefile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case Clonefile:
		return "clonefile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyRangeParams describes a byte range of a source image to copy to
// the start of a destination file.
type CopyRangeParams struct {
	DstFd     *os.File
	SrcPath   string
	SrcOffset int64
	SrcSize   int64
	Length    int64 // 0 means through the end of the source
	BlockSize int64 // read chunk alignment; 0 disables alignment

	// Swap flips each adjacent byte pair in flight, converting 16-bit
	// samples between byte orders.
	Swap bool
	// Throttle, when set, is called with each chunk's size before the
	// chunk is written. A non-nil return aborts the copy.
	Throttle func(n int) error
}

// CopyRange copies the byte range into the destination file, choosing
// the fastest strategy the platform and parameters allow. Swapping and
// throttling need the bytes in userspace, so either forces the plain
// read/write path.
func CopyRange(params CopyRangeParams) (CopyResult, error) {
	if params.Swap || params.Throttle != nil {
		preallocate(params.DstFd, copyLength(params))
		return copyReadWrite(params)
	}
	return copyFast(params)
}

// copyLength returns the effective byte count to copy.
func copyLength(params CopyRangeParams) int64 {
	if params.Length > 0 {
		return params.Length
	}
	return params.SrcSize - params.SrcOffset
}

// BlockSize returns the largest multiple of 4 up to 16 KiB that evenly
// divides both a track's start offset and its length, so chunked reads
// move whole sectors. Returns 1 when no multiple of 4 divides both.
func BlockSize(offset, length int64) int64 {
	for b := int64(16384); b >= 4; b -= 4 {
		if offset%b == 0 && length%b == 0 {
			return b
		}
	}
	return 1
}

// SwapPairs exchanges adjacent bytes in place. An odd trailing byte is
// left untouched.
func SwapPairs(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}
