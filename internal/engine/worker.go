package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/platform"
	"github.com/bamsammich/cuesplit/internal/stats"
)

// WorkerConfig controls worker behavior.
type WorkerConfig struct {
	NumWorkers int
	DryRun     bool
	Limiter    *rate.Limiter
	Events     chan<- event.Event
	Stats      stats.Writer
}

// WorkerPool manages a pool of track extraction workers.
type WorkerPool struct {
	cfg WorkerConfig

	failOnce sync.Once
	firstErr error
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	return &WorkerPool{cfg: cfg}
}

// Run starts workers that consume tasks. It blocks until the channel
// drains or a task fails; the first failure cancels the remaining work
// and is returned.
func (wp *WorkerPool) Run(ctx context.Context, tasks <-chan TrackTask) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for id := 0; id < wp.cfg.NumWorkers; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := wp.extract(ctx, id, task); err != nil {
					wp.fail(err, cancel)
					return
				}
			}
		}()
	}
	wg.Wait()

	if wp.firstErr != nil {
		return wp.firstErr
	}
	return ctx.Err()
}

// Close removes any part files left behind by cancelled workers.
func (wp *WorkerPool) Close() {
	parts.sweep()
}

func (wp *WorkerPool) fail(err error, cancel context.CancelFunc) {
	wp.failOnce.Do(func() {
		wp.firstErr = err
		cancel()
	})
}

func (wp *WorkerPool) extract(ctx context.Context, workerID int, task TrackTask) error {
	emitEvent(wp.cfg.Events, event.Event{
		Type:     event.TrackStarted,
		Track:    task.Track.Number,
		Path:     task.DstPath,
		Size:     task.Length,
		WorkerID: workerID,
	})

	if wp.cfg.DryRun {
		wp.cfg.Stats.AddTracksExtracted(1)
		wp.cfg.Stats.AddBytesExtracted(task.Length)
		emitEvent(wp.cfg.Events, event.Event{
			Type:     event.TrackCompleted,
			Track:    task.Track.Number,
			Path:     task.DstPath,
			Size:     task.Length,
			WorkerID: workerID,
		})
		return nil
	}

	dir := filepath.Dir(task.DstPath)
	base := filepath.Base(task.DstPath)
	tmpName := fmt.Sprintf(".%s.%s.cuesplit-tmp", base, uuid.New().String()[:8])
	tmpPath := filepath.Join(dir, tmpName)

	parts.add(tmpPath)
	defer func() {
		parts.drop(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return wp.failTrack(task, workerID, fmt.Errorf("create tmp %s: %w", tmpPath, err))
	}

	var throttle func(int) error
	if wp.cfg.Limiter != nil {
		throttle = func(n int) error { return wp.cfg.Limiter.WaitN(ctx, n) }
	}

	start := time.Now()
	result, err := platform.CopyRange(platform.CopyRangeParams{
		SrcPath:   task.SrcPath,
		DstFd:     tmpFd,
		SrcOffset: task.StartByte,
		SrcSize:   task.SrcSize,
		Length:    task.Length,
		BlockSize: task.BlockSize,
		Swap:      task.Swap,
		Throttle:  throttle,
	})
	if err != nil {
		tmpFd.Close()
		return wp.failTrack(task, workerID, fmt.Errorf("extract %s: %w", base, err))
	}
	if result.BytesWritten != task.Length {
		tmpFd.Close()
		return wp.failTrack(task, workerID,
			fmt.Errorf("extract %s: short copy (%d of %d bytes)", base, result.BytesWritten, task.Length))
	}

	if err := tmpFd.Close(); err != nil {
		return wp.failTrack(task, workerID, fmt.Errorf("close tmp %s: %w", tmpPath, err))
	}
	if err := os.Rename(tmpPath, task.DstPath); err != nil {
		return wp.failTrack(task, workerID, fmt.Errorf("rename %s -> %s: %w", tmpPath, task.DstPath, err))
	}

	slog.Debug("track extracted",
		"track", task.Track.Number,
		"path", task.DstPath,
		"bytes", result.BytesWritten,
		"method", result.Method.String(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	wp.cfg.Stats.AddTracksExtracted(1)
	wp.cfg.Stats.AddBytesExtracted(result.BytesWritten)
	emitEvent(wp.cfg.Events, event.Event{
		Type:     event.TrackCompleted,
		Track:    task.Track.Number,
		Path:     task.DstPath,
		Size:     result.BytesWritten,
		WorkerID: workerID,
	})
	return nil
}

func (wp *WorkerPool) failTrack(task TrackTask, workerID int, err error) error {
	wp.cfg.Stats.AddTracksFailed(1)
	emitEvent(wp.cfg.Events, event.Event{
		Type:     event.TrackFailed,
		Track:    task.Track.Number,
		Path:     task.DstPath,
		Error:    err,
		WorkerID: workerID,
	})
	return err
}
