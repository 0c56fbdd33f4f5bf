package layout

import (
	"fmt"
	"os"

	"github.com/bamsammich/cuesplit/internal/cuesheet"
)

// Error reports a track whose byte region cannot be computed from the
// sheet's index arithmetic.
type Error struct {
	Track  int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("track %02d: %s", e.Track, e.Reason)
}

// Resolve fills in StartByte, LengthBytes and the effective gap frames
// of every track. A track starts where the previous track in the same
// file ended plus its own pregap; it runs to the next track's start
// minus that track's pregap, or to the end of the file for the last
// track in each file. The pregap is the span between INDEX 00 and
// INDEX 01 when INDEX 00 is present, plus any explicit PREGAP
// directive. All frame counts convert to bytes at the track's own
// sector size.
func Resolve(s *cuesheet.Sheet) error {
	if err := statSources(s); err != nil {
		return err
	}
	if err := checkNumbering(s.Tracks); err != nil {
		return err
	}

	var running int64
	for i, t := range s.Tracks {
		pregap, err := effectivePregap(t)
		if err != nil {
			return err
		}
		t.PregapFrames = pregap
		t.PostgapFrames = t.Postgap

		pregapBytes := pregap * t.SectorSize
		t.StartByte = running + pregapBytes

		var next *cuesheet.Track
		if i < len(s.Tracks)-1 {
			next = s.Tracks[i+1]
		}

		if next == nil || next.File != t.File {
			t.LengthBytes = s.SourceOf(t).Size - t.StartByte
			running = 0
		} else {
			start, ok := t.Index(1)
			if !ok {
				return &Error{Track: t.Number, Reason: "no INDEX 01"}
			}
			nextStart, ok := next.Index(1)
			if !ok {
				return &Error{Track: next.Number, Reason: "no INDEX 01"}
			}
			nextPregap, err := effectivePregap(next)
			if err != nil {
				return err
			}
			frames := nextStart - start - nextPregap
			if frames < 0 {
				return &Error{
					Track:  t.Number,
					Reason: fmt.Sprintf("overlaps track %02d by %d frames", next.Number, -frames),
				}
			}
			t.LengthBytes = frames * t.SectorSize
			running += t.LengthBytes + pregapBytes
		}

		if t.LengthBytes <= 0 {
			return &Error{Track: t.Number, Reason: fmt.Sprintf("empty byte region (%d)", t.LengthBytes)}
		}
	}
	return nil
}

// effectivePregap returns the track's gap in frames. INDEX 00 marks
// where the gap's audio physically begins, so it needs INDEX 01 to
// bound it and must not come after it.
func effectivePregap(t *cuesheet.Track) (int64, error) {
	gap := t.Pregap
	i0, ok := t.Index(0)
	if !ok {
		return gap, nil
	}
	i1, ok := t.Index(1)
	if !ok {
		return 0, &Error{Track: t.Number, Reason: "INDEX 00 without INDEX 01"}
	}
	if i1 < i0 {
		return 0, &Error{
			Track:  t.Number,
			Reason: fmt.Sprintf("INDEX 00 (%s) after INDEX 01 (%s)", cuesheet.FormatTime(i0), cuesheet.FormatTime(i1)),
		}
	}
	return gap + (i1 - i0), nil
}

func statSources(s *cuesheet.Sheet) error {
	for _, sf := range s.Files {
		fi, err := os.Stat(sf.Path)
		if err != nil {
			return fmt.Errorf("stat source: %w", err)
		}
		sf.Size = fi.Size()
	}
	return nil
}

func checkNumbering(tracks []*cuesheet.Track) error {
	prev := 0
	for _, t := range tracks {
		if t.Number <= prev {
			return &Error{Track: t.Number, Reason: fmt.Sprintf("out of order after track %02d", prev)}
		}
		prev = t.Number
	}
	return nil
}
