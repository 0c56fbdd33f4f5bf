package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/platform"
	"github.com/bamsammich/cuesplit/internal/stats"
)

// verifyTask builds a task whose destination was already written with
// the given bytes.
func verifyTask(t *testing.T, dir string, number int, src []byte, start, length int64, dst []byte) TrackTask {
	t.Helper()
	srcPath := filepath.Join(dir, "src.bin")
	if _, err := os.Stat(srcPath); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(srcPath, src, 0o644))
	}
	dstPath := filepath.Join(dir, fmt.Sprintf("out%02d.cdr", number))
	require.NoError(t, os.WriteFile(dstPath, dst, 0o644))
	return TrackTask{
		Track:     audioTrack(number),
		SrcPath:   srcPath,
		DstPath:   dstPath,
		StartByte: start,
		Length:    length,
		SrcSize:   int64(len(src)),
	}
}

func TestVerify_CleanPass(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 4704)
	for i := range data {
		data[i] = byte(i * 7)
	}

	tasks := []TrackTask{
		verifyTask(t, dir, 1, data, 0, 2352, data[:2352]),
		verifyTask(t, dir, 2, data, 2352, 2352, data[2352:]),
	}

	collector := stats.NewCollector()
	events, getEvents := collectEvents(t)
	result := Verify(context.Background(), VerifyConfig{
		Workers: 2,
		Events:  events,
		Stats:   collector,
	}, tasks)

	assert.Equal(t, int64(2), result.Verified)
	assert.Equal(t, int64(0), result.Failed)
	assert.Empty(t, result.Errors)

	evs := getEvents()
	assert.Len(t, eventsOfType(evs, event.VerifyStarted), 1)
	assert.Len(t, eventsOfType(evs, event.VerifyOK), 2)
	assert.Equal(t, int64(2), collector.Snapshot().TracksVerified)
}

func TestVerify_Corruption(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 2352)
	for i := range data {
		data[i] = byte(i)
	}
	corrupted := slices.Clone(data)
	corrupted[100] ^= 0xFF

	task := verifyTask(t, dir, 1, data, 0, 2352, corrupted)

	collector := stats.NewCollector()
	events, getEvents := collectEvents(t)
	result := Verify(context.Background(), VerifyConfig{
		Workers: 1,
		Events:  events,
		Stats:   collector,
	}, []TrackTask{task})

	assert.Equal(t, int64(0), result.Verified)
	assert.Equal(t, int64(1), result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, filepath.Base(task.DstPath), result.Errors[0].Path)
	assert.NotEqual(t, result.Errors[0].SrcHash, result.Errors[0].DstHash)

	assert.Len(t, eventsOfType(getEvents(), event.VerifyFailed), 1)
	assert.Equal(t, int64(1), collector.Snapshot().VerifyFailed)
}

func TestVerify_SwapAware(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 2352)
	for i := range data {
		data[i] = byte(i * 3)
	}
	swapped := slices.Clone(data)
	platform.SwapPairs(swapped)

	// The destination holds swapped bytes, as a swap extraction writes
	// them. Hashing the source with the same swap must match.
	task := verifyTask(t, dir, 1, data, 0, 2352, swapped)
	task.Swap = true

	result := Verify(context.Background(), VerifyConfig{
		Workers: 1,
		Stats:   stats.NewCollector(),
	}, []TrackTask{task})
	assert.Equal(t, int64(1), result.Verified)
	assert.Equal(t, int64(0), result.Failed)

	// Without the swap flag the hashes diverge.
	task.Swap = false
	result = Verify(context.Background(), VerifyConfig{
		Workers: 1,
		Stats:   stats.NewCollector(),
	}, []TrackTask{task})
	assert.Equal(t, int64(1), result.Failed)
}

func TestVerify_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 2352)

	task := verifyTask(t, dir, 1, data, 0, 2352, data)
	require.NoError(t, os.Remove(task.DstPath))

	result := Verify(context.Background(), VerifyConfig{
		Workers: 1,
		Stats:   stats.NewCollector(),
	}, []TrackTask{task})

	assert.Equal(t, int64(1), result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "error", result.Errors[0].DstHash)
}
