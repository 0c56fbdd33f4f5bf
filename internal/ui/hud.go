package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bamsammich/cuesplit/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// hudPresenter provides a rich TTY display with a scrolling feed of
// completed tracks and a 2-line HUD that redraws in place. A disc holds
// at most 99 tracks, so the feed never floods the terminal.
type hudPresenter struct {
	w       io.Writer
	stats   stats.ReadTicker
	workers int
	outDir  string // output directory, stripped from displayed paths
	width   int    // terminal columns; 0 disables feed-line truncation

	// Internal state.
	hudDrawn     bool
	hudLineCount int // actual number of lines in the last HUD draw
	busyWorkers  map[int]bool
	lastHUDDraw  time.Time
}

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
	feedReserve      = 30                    // columns held for the icon, size and rate fields
)

func (p *hudPresenter) Run(events <-chan Event) error {
	p.busyWorkers = make(map[int]bool)

	// Fire first tick quickly to seed the ring buffer with initial speed data,
	// then switch to 1s interval.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw ticker for when no events are flowing (e.g., a long track copy).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(1 * time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case TrackStarted:
		p.busyWorkers[ev.WorkerID] = true

	case TrackCompleted:
		delete(p.busyWorkers, ev.WorkerID)
		p.clearHUD()
		p.printTrackCompleted(ev)
		p.drawHUD() // always redraw HUD after feed line

	case TrackFailed:
		delete(p.busyWorkers, ev.WorkerID)
		p.clearHUD()
		p.printTrackFailed(ev)
		p.drawHUD()

	case ConvertCompleted:
		p.clearHUD()
		fmt.Fprintf(p.w, "✓  %s  %sconverted%s\n",
			p.styledPath(ev.Path), ansiDim, ansiReset)
		p.drawHUD()

	case EncodeCompleted:
		p.clearHUD()
		fmt.Fprintf(p.w, "✓  %s  %sencoded%s\n",
			p.styledPath(ev.Path), ansiDim, ansiReset)
		p.drawHUD()

	case SheetWritten:
		p.clearHUD()
		fmt.Fprintf(p.w, "✓  %s  %ssheet%s\n",
			p.styledPath(ev.Path), ansiDim, ansiReset)
		p.drawHUD()

	case VerifyStarted:
		p.clearHUD()
		fmt.Fprintf(p.w, "%sverifying checksums...%s\n", ansiDim, ansiReset)

	case VerifyOK:
		// Silent; the summary carries the verified count.

	case VerifyFailed:
		p.clearHUD()
		fmt.Fprintf(p.w, "✗  %s  CHECKSUM MISMATCH\n", p.styledPath(ev.Path))
		p.drawHUD()
	}
}

func (p *hudPresenter) printTrackCompleted(ev Event) {
	speed := p.stats.RollingSpeed(5)
	if speed > 0 {
		fmt.Fprintf(p.w, "✓  %s  %10s  %s\n",
			p.styledPath(ev.Path), FormatBytes(ev.Size), FormatRate(speed))
	} else {
		fmt.Fprintf(p.w, "✓  %s  %10s\n",
			p.styledPath(ev.Path), FormatBytes(ev.Size))
	}
}

func (p *hudPresenter) printTrackFailed(ev Event) {
	errMsg := "error"
	if ev.Error != nil {
		errMsg = ev.Error.Error()
	}
	fmt.Fprintf(p.w, "✗  %s  %10s  %s\n",
		p.styledPath(ev.Path), FormatBytes(ev.Size), errMsg)
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	now := time.Now()
	if now.Sub(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()

	// Clear previous HUD if drawn.
	p.clearHUD()

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesExtracted) / float64(snap.BytesTotal)
	}

	speed := p.stats.RollingSpeed(10)
	eta := p.stats.ETA()

	lines := 0

	// Line 1: throughput sparkline + speed + byte totals.
	sparkData := p.stats.SparklineData(sparklineWidth)
	spark := Sparkline(sparkData, sparklineWidth)
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		spark, FormatRate(speed),
		FormatBytes(snap.BytesExtracted), FormatBytes(snap.BytesTotal))
	lines++

	// Line 2: progress bar (▪/□) + tracks + worker activity + eta.
	bar := ProgressBar(pct, progressBarWidth)
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s tracks   %s   eta %s\n",
		pct*100, bar,
		FormatCount(snap.TracksExtracted), FormatCount(snap.TracksTotal),
		WorkerIndicator(len(p.busyWorkers), p.workers),
		FormatETA(eta))
	lines++

	p.hudDrawn = true
	p.hudLineCount = lines
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	lines := p.hudLineCount
	if lines == 0 {
		lines = 2 // fallback
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", lines)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// relPath strips the output directory prefix from an absolute path to
// produce a cleaner relative path for display. Falls back to the
// original path.
func (p *hudPresenter) relPath(path string) string {
	if p.outDir == "" {
		return path
	}
	rel, err := filepath.Rel(p.outDir, path)
	if err != nil {
		return path
	}
	return rel
}

// styledPath returns the path with the directory portion dimmed and the
// filename in normal weight, making the actual filename stand out. Paths
// longer than the column budget are clipped from the left; a wrapped
// feed line would throw off the HUD cursor math.
func (p *hudPresenter) styledPath(path string) string {
	path = p.relPath(path)
	if budget := p.width - feedReserve; p.width > 0 && budget >= 12 {
		path = truncPath(path, budget)
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return base
	}
	return fmt.Sprintf("%s%s/%s%s", ansiDim, dir, ansiReset, base)
}

// truncPath shortens a path to fit within maxLen characters.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
// Exported for use by the plain presenter.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	// Ensure root ends with separator for clean stripping.
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
