package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"

	"github.com/bamsammich/cuesplit/internal/platform"
)

// HashRange computes the BLAKE3 hash of length bytes starting at
// offset. With swap set, byte pairs are flipped before hashing so the
// digest matches a swapped extraction. Reading past the end of the
// file is an error, not a short hash.
func HashRange(ctx context.Context, path string, offset, length int64, swap bool, limiter *rate.Limiter) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = io.NewSectionReader(f, offset, length)
	if limiter != nil {
		r = newRateLimitedReader(ctx, r, limiter)
	}

	h := blake3.New()
	buf := make([]byte, 64*1024)
	for remaining := length; remaining > 0; {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		chunk := int64(len(buf))
		if chunk > remaining {
			chunk = remaining
		}
		if _, err := io.ReadFull(r, buf[:chunk]); err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
		if swap {
			platform.SwapPairs(buf[:chunk])
		}
		h.Write(buf[:chunk])
		remaining -= chunk
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
