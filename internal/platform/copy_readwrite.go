package platform

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}

// copyReadWrite copies data using pread/pwrite with a pooled buffer.
// The destination is written from byte zero regardless of the source
// offset. Reads stay aligned to params.BlockSize so sectors are moved
// whole; only the final chunk may be short.
func copyReadWrite(params CopyRangeParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	chunk := int64(bufferSize)
	if params.BlockSize > 0 && params.BlockSize < chunk {
		chunk -= chunk % params.BlockSize
	}

	offset := params.SrcOffset
	remaining := copyLength(params)

	var totalWritten int64
	srcRawFd := int(srcFd.Fd())
	dstRawFd := int(params.DstFd.Fd())

	for remaining > 0 {
		toRead := chunk
		if toRead > remaining {
			toRead = remaining
		}

		n, err := unix.Pread(srcRawFd, buf[:toRead], offset)
		if err != nil {
			return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
		}
		if n == 0 {
			break
		}

		if params.Throttle != nil {
			if err := params.Throttle(n); err != nil {
				return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, err
			}
		}
		if params.Swap {
			SwapPairs(buf[:n])
		}

		dstOff := offset - params.SrcOffset
		written := 0
		for written < n {
			w, err := unix.Pwrite(dstRawFd, buf[written:n], dstOff+int64(written))
			if err != nil {
				return CopyResult{BytesWritten: totalWritten + int64(written), Method: ReadWrite}, err
			}
			written += w
		}

		offset += int64(n)
		remaining -= int64(n)
		totalWritten += int64(n)
	}

	return CopyResult{BytesWritten: totalWritten, Method: ReadWrite}, nil
}
