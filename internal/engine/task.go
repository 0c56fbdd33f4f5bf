package engine

import "github.com/bamsammich/cuesplit/internal/cuesheet"

// TrackTask describes the extraction of one track's byte region into
// its own output file.
type TrackTask struct {
	Track     *cuesheet.Track
	SrcPath   string
	DstPath   string
	StartByte int64
	Length    int64
	SrcSize   int64
	BlockSize int64
	Swap      bool
}
