package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// OggEnc encodes WAV files to Ogg Vorbis with the oggenc CLI.
type OggEnc struct {
	bin     string
	quality int
}

// NewOggEnc returns an OggEnc encoder at the given -q quality (0-10).
// An empty bin means "oggenc" from PATH.
func NewOggEnc(bin string, quality int) *OggEnc {
	if bin == "" {
		bin = "oggenc"
	}
	return &OggEnc{bin: bin, quality: quality}
}

func (o *OggEnc) Encode(ctx context.Context, wavPath string) (string, error) {
	outPath := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".ogg"
	if err := run(ctx, o.bin, "-q", strconv.Itoa(o.quality), "-o", outPath, wavPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// Flac encodes WAV files with the flac CLI. With deleteInput set the
// tool removes the WAV itself once the encode succeeds.
type Flac struct {
	bin         string
	level       int
	deleteInput bool
}

// NewFlac returns a Flac encoder at the given compression level (0-8).
// An empty bin means "flac" from PATH.
func NewFlac(bin string, level int, deleteInput bool) *Flac {
	if bin == "" {
		bin = "flac"
	}
	return &Flac{bin: bin, level: level, deleteInput: deleteInput}
}

func (f *Flac) Encode(ctx context.Context, wavPath string) (string, error) {
	outPath := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".flac"
	args := []string{fmt.Sprintf("-%d", f.level), "-f", "-o", outPath}
	if f.deleteInput {
		args = append(args, "--delete-input-file")
	}
	args = append(args, wavPath)
	if err := run(ctx, f.bin, args...); err != nil {
		return "", err
	}
	return outPath, nil
}

var (
	_ Encoder = (*OggEnc)(nil)
	_ Encoder = (*Flac)(nil)
)
