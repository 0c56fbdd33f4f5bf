package engine

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBWLimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		bytesPerSec int64
		wantBurst   int
	}{
		// 1x audio CD rate: 75 sectors/s at 2352 bytes.
		{"audio 1x", 75 * 2352, 75 * 2352},
		{"below 1MB", 512 * 1024, 512 * 1024},
		{"exactly 1MB", 1 << 20, 1 << 20},
		{"well above 1MB", 1 << 30, 1 << 20},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lim := NewBWLimiter(tt.bytesPerSec)
			assert.Equal(t, tt.wantBurst, lim.Burst())
			assert.InDelta(t, float64(tt.bytesPerSec), float64(lim.Limit()), 0.01)
		})
	}
}

func TestRateLimitedReaderIntact(t *testing.T) {
	t.Parallel()

	// Three audio sectors of random bytes must survive throttling unchanged.
	data := make([]byte, 3*2352)
	_, err := rand.Read(data)
	require.NoError(t, err)

	rl := newRateLimitedReader(context.Background(), bytes.NewReader(data), NewBWLimiter(8<<20))
	got, err := io.ReadAll(rl)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRateLimitedReaderThrottles(t *testing.T) {
	t.Parallel()

	// 12 KB at 4 KB/s: the burst covers the first 4 KB, the remaining
	// 8 KB must wait roughly two seconds.
	const bwlimit = 4 * 1024
	data := bytes.Repeat([]byte{0x2e}, 3*bwlimit)

	start := time.Now()
	rl := newRateLimitedReader(context.Background(), bytes.NewReader(data), NewBWLimiter(bwlimit))
	got, err := io.ReadAll(rl)

	require.NoError(t, err)
	assert.Len(t, got, len(data))
	assert.Greater(t, time.Since(start), 900*time.Millisecond)
}

func TestRateLimitedReaderCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rl := newRateLimitedReader(ctx, bytes.NewReader(make([]byte, 1<<20)), NewBWLimiter(16384))

	buf := make([]byte, 8192)
	for i := 0; i < 64; i++ {
		if _, err := rl.Read(buf); err != nil {
			require.ErrorIs(t, err, context.Canceled)
			return
		}
	}
	t.Fatal("reads kept succeeding after cancellation")
}
