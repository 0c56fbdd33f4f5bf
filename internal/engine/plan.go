package engine

import (
	"fmt"
	"path/filepath"

	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/platform"
)

// OutputName returns the file name a track extracts to: data tracks
// become .bin, audio tracks .cdr.
func OutputName(sheet *cuesheet.Sheet, t *cuesheet.Track) string {
	ext := ".bin"
	if t.Audio {
		ext = ".cdr"
	}
	return fmt.Sprintf("%s%02d%s", sheet.Name, t.Number, ext)
}

// Plan builds one extraction task per track of a resolved sheet. Byte
// swapping only ever applies to audio tracks.
func Plan(sheet *cuesheet.Sheet, outDir string, swap bool) []TrackTask {
	tasks := make([]TrackTask, 0, len(sheet.Tracks))
	for _, t := range sheet.Tracks {
		src := sheet.SourceOf(t)
		tasks = append(tasks, TrackTask{
			Track:     t,
			SrcPath:   src.Path,
			DstPath:   filepath.Join(outDir, OutputName(sheet, t)),
			StartByte: t.StartByte,
			Length:    t.LengthBytes,
			SrcSize:   src.Size,
			BlockSize: platform.BlockSize(t.StartByte, t.LengthBytes),
			Swap:      swap && t.Audio,
		})
	}
	return tasks
}
