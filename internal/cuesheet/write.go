package cuesheet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fileKeyword maps an output file extension to its CUE FILE format keyword.
func fileKeyword(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ogg":
		return "OGG"
	case ".flac":
		return "FLAC"
	case ".wav":
		return "WAVE"
	default:
		return "BINARY"
	}
}

// Write emits a CUE sheet for a set of extracted track files. names
// holds one output file name per track, in track order. Each track is
// written as a standalone FILE with INDEX 01 at zero: the physical
// pregap was stripped during extraction and survives only as a PREGAP
// line. A track with no matching name is skipped rather than corrupting
// the sheet; correct callers never produce that. Lines use CRLF endings
// and the two/four space indents disc mounting tools expect.
func Write(w io.Writer, tracks []*Track, names []string) error {
	bw := bufio.NewWriter(w)
	for i, t := range tracks {
		if i >= len(names) || names[i] == "" {
			continue
		}
		name := filepath.Base(names[i])
		fmt.Fprintf(bw, "FILE \"%s\" %s\r\n", name, fileKeyword(name))
		fmt.Fprintf(bw, "  TRACK %02d %s\r\n", t.Number, t.Mode)
		if t.PregapFrames > 0 {
			fmt.Fprintf(bw, "    PREGAP %s\r\n", FormatTime(t.PregapFrames))
		}
		fmt.Fprintf(bw, "    INDEX 01 00:00:00\r\n")
		if t.PostgapFrames > 0 {
			fmt.Fprintf(bw, "    POSTGAP %s\r\n", FormatTime(t.PostgapFrames))
		}
	}
	return bw.Flush()
}

// WriteFile writes the sheet to path, replacing any previous file.
func WriteFile(path string, tracks []*Track, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cue sheet: %w", err)
	}
	if err := Write(f, tracks, names); err != nil {
		f.Close()
		return fmt.Errorf("write cue sheet: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cue sheet: %w", err)
	}
	return nil
}
