package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/layout"
	"github.com/bamsammich/cuesplit/internal/platform"
	"github.com/bamsammich/cuesplit/internal/stats"
)

const mixedSheet = `FILE "image.bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 01 00:00:30
`

// Track 01 runs 30 raw data sectors, track 02 fills the rest of the
// file with 45 audio sectors.
const (
	mixedTrack1Len = 30 * 2352
	mixedTrack2Len = 45 * 2352
	mixedImageSize = mixedTrack1Len + mixedTrack2Len
)

func TestRun_MixedSingleFile(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	data := makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	collector := stats.NewCollector()
	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Workers:   2,
		Events:    drainEvents(t),
		Stats:     collector,
	})
	require.NoError(t, result.Err)
	assert.Equal(t, filepath.Join(dir, "image"), result.OutDir)

	bin := readOut(t, result.OutDir, "image01.bin")
	cdr := readOut(t, result.OutDir, "image02.cdr")
	assert.Equal(t, data[:mixedTrack1Len], bin)
	assert.Equal(t, data[mixedTrack1Len:], cdr)
	assert.Equal(t, mixedImageSize, len(bin)+len(cdr))

	// Byte extents are whole sectors.
	for _, tr := range result.Sheet.Tracks {
		assert.Zero(t, tr.StartByte%tr.SectorSize, "track %02d start", tr.Number)
		assert.Zero(t, tr.LengthBytes%tr.SectorSize, "track %02d length", tr.Number)
	}

	snap := collector.Snapshot()
	assert.Equal(t, int64(2), snap.TracksExtracted)
	assert.Equal(t, int64(mixedImageSize), snap.BytesExtracted)
	assert.Equal(t, int64(1), snap.SheetsWritten)

	// The output dir lock is released and removed.
	_, err := os.Stat(filepath.Join(result.OutDir, ".cuesplit.lock"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_SheetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Workers:   1,
	})
	require.NoError(t, result.Err)

	// The emitted sheet resolves against the extracted files: every
	// track is now a single-track file starting at byte zero.
	out := parseFixture(t, filepath.Join(result.OutDir, "image01_bin.cue"))
	require.Len(t, out.Tracks, 2)
	require.Len(t, out.Files, 2)
	for i, tr := range out.Tracks {
		assert.Equal(t, int64(0), tr.StartByte, "track %02d", tr.Number)
		assert.Equal(t, out.Files[i].Size, tr.LengthBytes, "track %02d", tr.Number)
	}
	assert.Equal(t, result.Sheet.Tracks[0].Mode, out.Tracks[0].Mode)
	assert.Equal(t, result.Sheet.Tracks[1].Mode, out.Tracks[1].Mode)
}

func TestRun_PregapAdditive(t *testing.T) {
	// Track 02 carries both an explicit PREGAP and an INDEX 00 gap, a
	// shape real sheets should not produce. The two add up: 5 frames of
	// PREGAP plus 10 frames between INDEX 00 (00:01:65) and INDEX 01
	// (00:02:00).
	const body = `FILE "disc.bin" BINARY
  TRACK 01 AUDIO
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    PREGAP 00:00:05
    INDEX 00 00:01:65
    INDEX 01 00:02:00
`
	const (
		track1Len   = 135 * 2352 // 150 frames minus the 15-frame gap
		track2Start = 150 * 2352
		track2Len   = 50 * 2352
	)

	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "disc.cue", body)
	data := makeImage(t, filepath.Join(dir, "disc.bin"), track2Start+track2Len)

	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Workers:   2,
	})
	require.NoError(t, result.Err)

	require.Len(t, result.Sheet.Tracks, 2)
	assert.Equal(t, int64(15), result.Sheet.Tracks[1].PregapFrames)
	assert.Equal(t, int64(track1Len), result.Sheet.Tracks[0].LengthBytes)
	assert.Equal(t, int64(track2Start), result.Sheet.Tracks[1].StartByte)

	assert.Equal(t, data[:track1Len], readOut(t, result.OutDir, "disc01.cdr"))
	assert.Equal(t, data[track2Start:], readOut(t, result.OutDir, "disc02.cdr"))

	// The gap survives as a PREGAP line in the emitted sheet.
	sheet, err := os.ReadFile(filepath.Join(result.OutDir, "disc01_bin.cue"))
	require.NoError(t, err)
	assert.Contains(t, string(sheet), "PREGAP 00:00:15\r\n")
}

func TestRun_TwoFiles(t *testing.T) {
	const body = `FILE "gameA.bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
FILE "gameB.bin" BINARY
  TRACK 02 AUDIO
    INDEX 00 00:00:00
    INDEX 01 00:02:00
`
	const (
		sizeA       = 20 * 2352
		track2Start = 150 * 2352
		track2Len   = 10 * 2352
	)

	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "game.cue", body)
	dataA := makeImage(t, filepath.Join(dir, "gameA.bin"), sizeA)
	dataB := makeImage(t, filepath.Join(dir, "gameB.bin"), track2Start+track2Len)

	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Workers:   2,
	})
	require.NoError(t, result.Err)

	// Track 01 runs to the end of its own file; track 02's offsets
	// restart in the second file, past the 150-frame pregap.
	tracks := result.Sheet.Tracks
	assert.Equal(t, int64(0), tracks[0].StartByte)
	assert.Equal(t, int64(sizeA), tracks[0].LengthBytes)
	assert.Equal(t, int64(150), tracks[1].PregapFrames)
	assert.Equal(t, int64(track2Start), tracks[1].StartByte)
	assert.Equal(t, int64(track2Len), tracks[1].LengthBytes)

	assert.Equal(t, dataA, readOut(t, result.OutDir, "game01.bin"))
	assert.Equal(t, dataB[track2Start:], readOut(t, result.OutDir, "game02.cdr"))
}

func TestRun_SwapRoundTrip(t *testing.T) {
	const body = `FILE "tape.bin" BINARY
  TRACK 01 AUDIO
    INDEX 01 00:00:00
`
	const size = 12 * 2352

	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "tape.cue", body)
	data := makeImage(t, filepath.Join(dir, "tape.bin"), size)

	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Swap:      true,
		Workers:   1,
	})
	require.NoError(t, result.Err)

	swapped := slices.Clone(data)
	platform.SwapPairs(swapped)
	assert.Equal(t, swapped, readOut(t, result.OutDir, "tape01.cdr"))

	// Splitting the swapped output with swap enabled again restores the
	// original bytes.
	again := writeSheet(t, result.OutDir, "again.cue", `FILE "tape01.cdr" BINARY
  TRACK 01 AUDIO
    INDEX 01 00:00:00
`)
	result2 := Run(context.Background(), Config{
		SheetPath: again,
		Formats:   []Format{Native},
		Swap:      true,
		Workers:   1,
	})
	require.NoError(t, result2.Err)
	assert.Equal(t, data, readOut(t, result2.OutDir, "again01.cdr"))
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	collector := stats.NewCollector()
	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		DryRun:    true,
		Workers:   2,
		Stats:     collector,
	})
	require.NoError(t, result.Err)

	// Nothing on disk, but the would-be work is still counted.
	_, err := os.Stat(result.OutDir)
	assert.True(t, os.IsNotExist(err))

	snap := collector.Snapshot()
	assert.Equal(t, int64(2), snap.TracksExtracted)
	assert.Equal(t, int64(mixedImageSize), snap.BytesExtracted)
	assert.Equal(t, int64(0), snap.SheetsWritten)
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)

	result := Run(context.Background(), Config{SheetPath: sheetPath})
	require.Error(t, result.Err)

	var rerr *cuesheet.ResolutionError
	require.ErrorAs(t, result.Err, &rerr)
	assert.Contains(t, result.Err.Error(), "image.bin")

	_, err := os.Stat(filepath.Join(dir, "image"))
	assert.True(t, os.IsNotExist(err), "no output dir on a bad sheet")
}

func TestRun_WrongFileFormat(t *testing.T) {
	const body = `FILE "image.wav" WAVE
  TRACK 01 AUDIO
    INDEX 01 00:00:00
`
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", body)
	makeImage(t, filepath.Join(dir, "image.wav"), 2352)

	result := Run(context.Background(), Config{SheetPath: sheetPath})
	require.Error(t, result.Err)

	var rerr *cuesheet.ResolutionError
	require.ErrorAs(t, result.Err, &rerr)
	assert.Contains(t, result.Err.Error(), "WAVE")

	_, err := os.Stat(filepath.Join(dir, "image"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NoFiles(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "empty.cue", "REM a sheet with no FILE lines\n")

	result := Run(context.Background(), Config{SheetPath: sheetPath})
	require.ErrorIs(t, result.Err, cuesheet.ErrNoFiles)

	_, err := os.Stat(filepath.Join(dir, "empty"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_TruncatedImage(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	// Shorter than track 01 alone: track 02's length goes negative.
	makeImage(t, filepath.Join(dir, "image.bin"), 50000)

	result := Run(context.Background(), Config{SheetPath: sheetPath})
	require.Error(t, result.Err)

	var lerr *layout.Error
	require.ErrorAs(t, result.Err, &lerr)
	assert.Equal(t, 2, lerr.Track)
}

func TestRun_OutOfOrderTracks(t *testing.T) {
	const body = `FILE "image.bin" BINARY
  TRACK 02 AUDIO
    INDEX 01 00:00:00
  TRACK 01 AUDIO
    INDEX 01 00:00:30
`
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", body)
	makeImage(t, filepath.Join(dir, "image.bin"), 45*2352)

	result := Run(context.Background(), Config{SheetPath: sheetPath})
	require.Error(t, result.Err)

	var lerr *layout.Error
	require.ErrorAs(t, result.Err, &lerr)
	assert.Contains(t, lerr.Reason, "out of order")
}

func TestRun_OutDirLocked(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	outDir := filepath.Join(dir, "image")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	held := flock.New(filepath.Join(outDir, ".cuesplit.lock"))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock() //nolint:errcheck // test cleanup

	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
	})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "in use")
}

func TestRun_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Workers:   2,
	})
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, context.Canceled))
}

func TestRun_Verify(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	collector := stats.NewCollector()
	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		Verify:    true,
		Workers:   2,
		Stats:     collector,
	})
	require.NoError(t, result.Err)

	snap := collector.Snapshot()
	assert.Equal(t, int64(2), snap.TracksVerified)
	assert.Equal(t, int64(0), snap.VerifyFailed)
}

func TestRun_BWLimit(t *testing.T) {
	dir := t.TempDir()
	sheetPath := writeSheet(t, dir, "image.cue", mixedSheet)
	data := makeImage(t, filepath.Join(dir, "image.bin"), mixedImageSize)

	// Limit far above the image size: exercises the throttled read path
	// without slowing the test down.
	result := Run(context.Background(), Config{
		SheetPath: sheetPath,
		Formats:   []Format{Native},
		BWLimit:   1 << 30,
		Workers:   1,
	})
	require.NoError(t, result.Err)
	assert.Equal(t, data[:mixedTrack1Len], readOut(t, result.OutDir, "image01.bin"))
	assert.Equal(t, data[mixedTrack1Len:], readOut(t, result.OutDir, "image02.cdr"))
}
