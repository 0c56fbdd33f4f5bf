package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/cuesplit/internal/audio"
	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/event"
)

// Format selects which cue sheet flavor to produce alongside the
// extracted tracks.
type Format int

const (
	Native   Format = iota // raw .bin/.cdr tracks
	Lossy                  // audio tracks as Ogg Vorbis
	Lossless               // audio tracks as FLAC
)

var formatNames = [...]string{
	Native:   "bin",
	Lossy:    "ogg",
	Lossless: "flac",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// AllFormats lists every producible format in output order.
var AllFormats = []Format{Native, Lossy, Lossless}

// ParseFormat maps a --format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "native":
		return Native, nil
	case "lossy":
		return Lossy, nil
	case "lossless":
		return Lossless, nil
	}
	return 0, fmt.Errorf("unknown format %q (use native, lossy or lossless)", s)
}

// normalizeFormats deduplicates into fixed production order, Native
// first and Lossless last, so the lossless encoder is always the final
// WAV consumer and may delete its input. Defaults to Native when
// nothing was requested.
func normalizeFormats(formats []Format) []Format {
	if len(formats) == 0 {
		return []Format{Native}
	}
	want := make(map[Format]bool, len(formats))
	for _, f := range formats {
		want[f] = true
	}
	out := make([]Format, 0, len(want))
	for _, f := range AllFormats {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

// SheetName returns the cue sheet file name emitted for a format. The
// 01 mirrors the first track file the sheet opens with.
func SheetName(sheet *cuesheet.Sheet, f Format) string {
	return fmt.Sprintf("%s01_%s.cue", sheet.Name, f)
}

// writeFormats emits one cue sheet per requested format. Audio tracks
// are converted to WAV once, on the first format that needs them, then
// encoded per format; data tracks keep their extracted .bin names in
// every sheet. WAV intermediates are removed afterward unless the run
// asked to keep them.
func writeFormats(ctx context.Context, cfg Config, sheet *cuesheet.Sheet, tasks []TrackTask, outDir string) error {
	if cfg.DryRun {
		return nil
	}
	fr := &formatRun{
		cfg:    cfg,
		sheet:  sheet,
		tasks:  tasks,
		outDir: outDir,
		wavs:   make(map[int]string),
	}
	defer fr.cleanup()

	for _, f := range normalizeFormats(cfg.Formats) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fr.write(ctx, f); err != nil {
			return fmt.Errorf("%s sheet: %w", f, err)
		}
	}
	return nil
}

type formatRun struct {
	cfg    Config
	sheet  *cuesheet.Sheet
	tasks  []TrackTask
	outDir string

	wavs map[int]string // track number -> converted WAV path
}

func (fr *formatRun) write(ctx context.Context, f Format) error {
	names := make([]string, len(fr.tasks))
	for i, task := range fr.tasks {
		name, err := fr.trackName(ctx, f, task)
		if err != nil {
			return err
		}
		names[i] = name
	}

	path := filepath.Join(fr.outDir, SheetName(fr.sheet, f))
	if err := cuesheet.WriteFile(path, fr.sheet.Tracks, names); err != nil {
		return err
	}

	fr.cfg.Stats.AddSheetsWritten(1)
	emitEvent(fr.cfg.Events, event.Event{
		Type:   event.SheetWritten,
		Path:   path,
		Format: f.String(),
	})
	slog.Debug("cue sheet written", "format", f.String(), "path", path)
	return nil
}

// trackName returns the file name the sheet should reference for a
// track, encoding audio tracks first when the format calls for it.
func (fr *formatRun) trackName(ctx context.Context, f Format, task TrackTask) (string, error) {
	base := filepath.Base(task.DstPath)
	if f == Native || !task.Track.Audio {
		return base, nil
	}

	var enc audio.Encoder
	switch f {
	case Lossy:
		enc = fr.cfg.Lossy
	case Lossless:
		enc = fr.cfg.Lossless
	}
	if enc == nil {
		return "", fmt.Errorf("no %s encoder configured", f)
	}

	wav, err := fr.convert(ctx, task)
	if err != nil {
		return "", err
	}

	emitEvent(fr.cfg.Events, event.Event{
		Type:   event.EncodeStarted,
		Track:  task.Track.Number,
		Path:   wav,
		Format: f.String(),
	})
	out, err := enc.Encode(ctx, wav)
	if err != nil {
		return "", fmt.Errorf("encode track %02d: %w", task.Track.Number, err)
	}
	fr.cfg.Stats.AddTracksEncoded(1)
	emitEvent(fr.cfg.Events, event.Event{
		Type:   event.EncodeCompleted,
		Track:  task.Track.Number,
		Path:   out,
		Format: f.String(),
	})
	return filepath.Base(out), nil
}

// convert produces the track's WAV intermediate, at most once per run.
func (fr *formatRun) convert(ctx context.Context, task TrackTask) (string, error) {
	if wav, ok := fr.wavs[task.Track.Number]; ok {
		return wav, nil
	}
	if fr.cfg.Converter == nil {
		return "", errors.New("no audio converter configured")
	}

	wav := strings.TrimSuffix(task.DstPath, filepath.Ext(task.DstPath)) + ".wav"
	emitEvent(fr.cfg.Events, event.Event{
		Type:  event.ConvertStarted,
		Track: task.Track.Number,
		Path:  wav,
	})
	if err := fr.cfg.Converter.Convert(ctx, task.DstPath, wav); err != nil {
		return "", fmt.Errorf("convert track %02d: %w", task.Track.Number, err)
	}
	fr.cfg.Stats.AddTracksConverted(1)
	emitEvent(fr.cfg.Events, event.Event{
		Type:  event.ConvertCompleted,
		Track: task.Track.Number,
		Path:  wav,
	})
	fr.wavs[task.Track.Number] = wav
	return wav, nil
}

// cleanup removes WAV intermediates. The lossless encoder may have
// deleted its input already, so missing files are fine.
func (fr *formatRun) cleanup() {
	if fr.cfg.KeepWAV {
		return
	}
	for _, wav := range fr.wavs {
		if err := os.Remove(wav); err != nil && !os.IsNotExist(err) {
			slog.Debug("remove wav intermediate", "path", wav, "error", err)
		}
	}
}
