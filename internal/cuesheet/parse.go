package cuesheet

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding selects how sheet bytes are decoded before parsing.
type Encoding int

const (
	EncodingUTF8   Encoding = iota // default; a leading BOM is stripped
	EncodingLatin1                 // single-byte western sheets, decoded as Windows-1252
)

// ParseEncoding maps a CLI/config token to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin1":
		return EncodingLatin1, nil
	}
	return 0, fmt.Errorf("unknown sheet encoding %q (use utf-8 or latin1)", s)
}

var modeRe = regexp.MustCompile(`^MODE[0-9]/([0-9]{4})$`)

// Parse reads the CUE sheet at path and resolves it into a Sheet. FILE
// paths are reduced to their basename and re-joined with the sheet's
// own directory; directory components written into the sheet are not
// trusted. Malformed lines are skipped. After the scan, missing files,
// non-BINARY files, and unrecognized track modes are all collected into
// one ResolutionError.
func Parse(path string, enc Encoding) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue sheet: %w", err)
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cue sheet path: %w", err)
	}
	base := filepath.Base(abs)
	sheet := &Sheet{
		Path: abs,
		Dir:  filepath.Dir(abs),
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}

	var r io.Reader = f
	if enc == EncodingLatin1 {
		r = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}

	if err := sheet.scan(r); err != nil {
		return nil, err
	}
	return sheet, sheet.resolve()
}

func (s *Sheet) scan(r io.Reader) error {
	sc := bufio.NewScanner(r)
	var cur *Track
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		d, ok := ParseDirective(strings.TrimSpace(line))
		if !ok {
			continue
		}

		switch d := d.(type) {
		case FileDirective:
			s.Files = append(s.Files, &SourceFile{
				Path:   filepath.Join(s.Dir, baseName(d.Name)),
				Format: d.Format,
			})
			// Index offsets are relative to one file; a track cannot
			// span the FILE boundary.
			cur = nil

		case TrackDirective:
			if len(s.Files) == 0 {
				slog.Debug("TRACK before any FILE directive, skipping", "track", d.Number)
				continue
			}
			cur = s.newTrack(d)
			s.Tracks = append(s.Tracks, cur)

		case IndexDirective:
			if cur == nil {
				slog.Debug("INDEX outside a track, skipping", "index", d.Number)
				continue
			}
			cur.Indexes[d.Number] = d.Frames

		case PregapDirective:
			if cur == nil {
				continue
			}
			cur.Pregap = d.Frames

		case PostgapDirective:
			if cur == nil {
				continue
			}
			cur.Postgap = d.Frames
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read cue sheet: %w", err)
	}
	return nil
}

func (s *Sheet) newTrack(d TrackDirective) *Track {
	t := &Track{
		Number:  d.Number,
		Mode:    d.Mode,
		File:    len(s.Files) - 1,
		Indexes: make(map[int]int64),
	}
	switch m := modeRe.FindStringSubmatch(d.Mode); {
	case d.Mode == "AUDIO":
		t.Audio = true
		t.SectorSize = AudioSectorSize
	case m != nil:
		size, _ := strconv.ParseInt(m[1], 10, 64)
		t.SectorSize = size
	default:
		s.badModes = append(s.badModes, fmt.Sprintf("track %02d (%s)", d.Number, d.Mode))
	}
	return t
}

// baseName strips any directory component from a FILE directive name.
// Sheets are usually authored on Windows, so both separators count.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// resolve stats every referenced file and batches everything wrong with
// the sheet into a single error. File sizes are left for layout.
func (s *Sheet) resolve() error {
	if len(s.Files) == 0 {
		return ErrNoFiles
	}
	rerr := &ResolutionError{}
	for _, sf := range s.Files {
		if _, err := os.Stat(sf.Path); err != nil {
			rerr.add(MissingFile, sf.Path)
			continue
		}
		if sf.Format != "BINARY" {
			rerr.add(WrongFormat, fmt.Sprintf("%s (%s)", sf.Path, sf.Format))
		}
	}
	for _, desc := range s.badModes {
		rerr.add(UnknownMode, desc)
	}
	if !rerr.empty() {
		return rerr
	}
	return nil
}
