package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/cuesplit/internal/stats"
)

// plainPresenter outputs one line per completed track/sheet to stdout,
// and periodic progress to stderr when not a TTY.
type plainPresenter struct {
	w      io.Writer
	errW   io.Writer
	stats  stats.Reader
	outDir string
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	path := StripRoot(p.outDir, ev.Path)
	switch ev.Type {
	case TrackCompleted:
		speed := p.stats.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", path, FormatBytes(ev.Size), FormatRate(speed))
	case TrackFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s  %s\n", path, FormatBytes(ev.Size), errMsg)
	case ConvertCompleted:
		fmt.Fprintf(p.w, "%s  converted\n", path)
	case EncodeCompleted:
		fmt.Fprintf(p.w, "%s  encoded\n", path)
	case SheetWritten:
		fmt.Fprintf(p.w, "sheet: %s\n", path)
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", path)
	case VerifyOK:
		// silent in plain mode
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesExtracted) / float64(snap.BytesTotal) * 100
		speed := p.stats.RollingSpeed(10)
		eta := p.stats.ETA()
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s tracks %s eta %s\n",
			pct,
			FormatBytes(snap.BytesExtracted), FormatBytes(snap.BytesTotal),
			FormatCount(snap.TracksExtracted), FormatCount(snap.TracksTotal),
			FormatRate(speed),
			FormatETA(eta),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s extracted %s tracks\n",
			FormatBytes(snap.BytesExtracted),
			FormatCount(snap.TracksExtracted),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
