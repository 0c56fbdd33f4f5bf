package audio

import "context"

// FFmpeg converts raw PCM tracks with the ffmpeg CLI.
type FFmpeg struct {
	bin string
}

// NewFFmpeg returns an FFmpeg converter. An empty bin means "ffmpeg"
// from PATH.
func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin}
}

func (f *FFmpeg) Convert(ctx context.Context, rawPath, wavPath string) error {
	return run(ctx, f.bin,
		"-f", "s16le", "-ar", "44100", "-ac", "2",
		"-i", rawPath,
		"-y", wavPath,
	)
}

// SoX converts raw PCM tracks with the sox CLI.
type SoX struct {
	bin string
}

// NewSoX returns a SoX converter. An empty bin means "sox" from PATH.
func NewSoX(bin string) *SoX {
	if bin == "" {
		bin = "sox"
	}
	return &SoX{bin: bin}
}

func (s *SoX) Convert(ctx context.Context, rawPath, wavPath string) error {
	return run(ctx, s.bin,
		"-t", "raw", "-r", "44100", "-e", "signed", "-b", "16", "-c", "2",
		rawPath, wavPath,
	)
}

var (
	_ Converter = (*FFmpeg)(nil)
	_ Converter = (*SoX)(nil)
)
