package cuesheet

// CD timing constants. CUE timestamps address frames, 75 per second of
// playback, regardless of sector size.
const (
	FramesPerSecond = 75
	FramesPerMinute = 60 * FramesPerSecond
)

// AudioSectorSize is the raw sector size of CD-DA audio tracks. Data
// track sector sizes are declared by the sheet (2048, 2324, 2336, 2352,
// or 2448 in practice).
const AudioSectorSize = 2352

// SourceFile is a binary image referenced by a FILE directive.
type SourceFile struct {
	Path   string // sheet's directory + the directive's basename
	Format string // declared format keyword; anything but BINARY fails resolution
	Size   int64  // bytes on disk, read once at layout time
}

// Track is one logical track of the image. The byte extent fields are
// zero until layout resolution fills them in; nothing recomputes them
// afterward.
type Track struct {
	Number     int
	Mode       string // raw TRACK mode field ("AUDIO", "MODE2/2352", ...)
	Audio      bool
	SectorSize int64
	File       int // index into Sheet.Files

	Indexes map[int]int64 // INDEX number -> frame offset within the source file
	Pregap  int64         // explicit PREGAP directive, frames
	Postgap int64         // explicit POSTGAP directive, frames

	// Filled in by layout resolution.
	StartByte     int64 // where extraction begins, past any physical pregap
	LengthBytes   int64
	PregapFrames  int64 // effective pregap: INDEX 00 gap plus directive
	PostgapFrames int64
}

// Index returns the frame offset of INDEX n and whether the track has it.
func (t *Track) Index(n int) (int64, bool) {
	v, ok := t.Indexes[n]
	return v, ok
}

// Sheet is the resolved track table of one CUE sheet.
type Sheet struct {
	Path   string // absolute sheet path
	Dir    string
	Name   string // sheet basename without extension, used to name outputs
	Files  []*SourceFile
	Tracks []*Track

	badModes []string
}

// SourceOf returns the source file that owns t.
func (s *Sheet) SourceOf(t *Track) *SourceFile {
	return s.Files[t.File]
}
