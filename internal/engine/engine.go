package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
	"golang.org/x/time/rate"

	"github.com/bamsammich/cuesplit/internal/audio"
	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/layout"
	"github.com/bamsammich/cuesplit/internal/stats"
)

// Config describes a split operation.
type Config struct {
	SheetPath string
	OutDir    string // empty means <sheet dir>/<sheet name>
	Encoding  cuesheet.Encoding
	Formats   []Format
	Swap      bool
	Workers   int
	Verify    bool
	DryRun    bool
	KeepWAV   bool
	BWLimit   int64 // bytes/sec, 0 means unlimited

	Converter audio.Converter
	Lossy     audio.Encoder
	Lossless  audio.Encoder

	Events chan<- event.Event
	Stats  stats.Writer
}

// Result is the outcome of a split operation.
type Result struct {
	Sheet  *cuesheet.Sheet
	OutDir string
	Err    error
}

// Run executes a split operation, blocking until complete. The first
// failing track, conversion, encode or sheet write aborts the run.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	sheet, err := cuesheet.Parse(cfg.SheetPath, cfg.Encoding)
	if err != nil {
		return Result{Err: fmt.Errorf("parse %s: %w", cfg.SheetPath, err)}
	}
	if err := layout.Resolve(sheet); err != nil {
		return Result{Sheet: sheet, Err: err}
	}
	if len(sheet.Tracks) == 0 {
		return Result{Sheet: sheet, Err: fmt.Errorf("%s: no tracks", cfg.SheetPath)}
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = filepath.Join(sheet.Dir, sheet.Name)
	}

	tasks := Plan(sheet, outDir, cfg.Swap)

	var totalBytes int64
	for _, task := range tasks {
		totalBytes += task.Length
	}
	cfg.Stats.SetTotals(int64(len(tasks)), totalBytes)
	emitEvent(cfg.Events, event.Event{
		Type:      event.PlanComplete,
		Total:     int64(len(tasks)),
		TotalSize: totalBytes,
	})

	if !cfg.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return Result{Sheet: sheet, OutDir: outDir, Err: fmt.Errorf("create output dir: %w", err)}
		}

		lock := flock.New(filepath.Join(outDir, ".cuesplit.lock"))
		locked, err := lock.TryLock()
		if err != nil {
			return Result{Sheet: sheet, OutDir: outDir, Err: fmt.Errorf("lock output dir: %w", err)}
		}
		if !locked {
			return Result{Sheet: sheet, OutDir: outDir,
				Err: fmt.Errorf("output dir %s is in use by another cuesplit", outDir)}
		}
		defer func() {
			_ = lock.Unlock()
			_ = os.Remove(lock.Path())
		}()
	}

	var limiter *rate.Limiter
	if cfg.BWLimit > 0 {
		limiter = NewBWLimiter(cfg.BWLimit)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), 4)
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	pool := NewWorkerPool(WorkerConfig{
		NumWorkers: workers,
		DryRun:     cfg.DryRun,
		Limiter:    limiter,
		Events:     cfg.Events,
		Stats:      cfg.Stats,
	})
	defer pool.Close()

	taskCh := make(chan TrackTask, len(tasks))
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	if err := pool.Run(ctx, taskCh); err != nil {
		return Result{Sheet: sheet, OutDir: outDir, Err: err}
	}

	if cfg.Verify && !cfg.DryRun {
		vres := Verify(ctx, VerifyConfig{
			Workers: workers,
			Limiter: limiter,
			Events:  cfg.Events,
			Stats:   cfg.Stats,
		}, tasks)
		if err := ctx.Err(); err != nil {
			return Result{Sheet: sheet, OutDir: outDir, Err: err}
		}
		if vres.Failed > 0 {
			return Result{Sheet: sheet, OutDir: outDir, Err: verifyFailure(vres)}
		}
	}

	if err := writeFormats(ctx, cfg, sheet, tasks, outDir); err != nil {
		return Result{Sheet: sheet, OutDir: outDir, Err: err}
	}

	return Result{Sheet: sheet, OutDir: outDir}
}

func verifyFailure(v VerifyResult) error {
	first := v.Errors[0]
	if v.Failed == 1 {
		return fmt.Errorf("verify %s: checksum mismatch (src %s, dst %s)",
			first.Path, shortHash(first.SrcHash), shortHash(first.DstHash))
	}
	return fmt.Errorf("verify: %d of %d tracks failed (first: %s)",
		v.Failed, v.Failed+v.Verified, first.Path)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
