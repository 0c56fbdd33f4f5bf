package cuesheet

import (
	"strconv"
	"strings"
	"unicode"
)

// Directive is one parsed CUE sheet line.
type Directive interface {
	directive()
}

// FileDirective declares a new source image file.
type FileDirective struct {
	Name   string // as written, quotes stripped
	Format string
}

// TrackDirective opens a new track in the most recently declared file.
type TrackDirective struct {
	Number int
	Mode   string
}

// IndexDirective marks a frame offset of the current track within its file.
type IndexDirective struct {
	Number int
	Frames int64
}

// PregapDirective declares lead-in silence for the current track.
type PregapDirective struct {
	Frames int64
}

// PostgapDirective declares trailing silence for the current track.
type PostgapDirective struct {
	Frames int64
}

func (FileDirective) directive()    {}
func (TrackDirective) directive()   {}
func (IndexDirective) directive()   {}
func (PregapDirective) directive()  {}
func (PostgapDirective) directive() {}

// ParseDirective interprets a single trimmed CUE line. ok is false for
// blank, REM, and otherwise unrecognized lines, which callers skip.
func ParseDirective(line string) (Directive, bool) {
	toks := fields(line)
	if len(toks) == 0 {
		return nil, false
	}
	switch toks[0] {
	case "FILE":
		if len(toks) != 3 || toks[1] == "" {
			return nil, false
		}
		return FileDirective{Name: toks[1], Format: toks[2]}, true

	case "TRACK":
		if len(toks) != 3 {
			return nil, false
		}
		n, err := strconv.Atoi(toks[1])
		if err != nil || n < 1 {
			return nil, false
		}
		return TrackDirective{Number: n, Mode: toks[2]}, true

	case "INDEX":
		if len(toks) != 3 {
			return nil, false
		}
		n, err := strconv.Atoi(toks[1])
		if err != nil || n < 0 {
			return nil, false
		}
		frames, err := ParseTime(toks[2])
		if err != nil {
			return nil, false
		}
		return IndexDirective{Number: n, Frames: frames}, true

	case "PREGAP", "POSTGAP":
		if len(toks) != 2 {
			return nil, false
		}
		frames, err := ParseTime(toks[1])
		if err != nil {
			return nil, false
		}
		if toks[0] == "PREGAP" {
			return PregapDirective{Frames: frames}, true
		}
		return PostgapDirective{Frames: frames}, true
	}
	return nil, false
}

// fields splits a directive line on whitespace, keeping double-quoted
// spans (file names with spaces) together as one token.
func fields(line string) []string {
	var out []string
	var cur strings.Builder
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && unicode.IsSpace(r):
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
