package engine

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/stats"
)

// VerifyConfig controls the post-extraction verification pass.
type VerifyConfig struct {
	Workers int
	Limiter *rate.Limiter
	Events  chan<- event.Event
	Stats   stats.Writer
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Verified int64
	Failed   int64
	Errors   []VerifyError
}

// VerifyError records a single checksum mismatch.
type VerifyError struct {
	Path    string
	SrcHash string
	DstHash string
}

// Verify re-reads every extracted track and compares its BLAKE3 digest
// against the source byte region, with the extraction's byte swap
// applied to the source side. It fans out to cfg.Workers goroutines.
func Verify(ctx context.Context, cfg VerifyConfig, tasks []TrackTask) VerifyResult {
	emitEvent(cfg.Events, event.Event{Type: event.VerifyStarted})

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	taskCh := make(chan TrackTask, workers*2)
	var mu sync.Mutex
	var result VerifyResult
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				name := filepath.Base(task.DstPath)

				srcHash, err := HashRange(ctx, task.SrcPath, task.StartByte, task.Length, task.Swap, cfg.Limiter)
				if err != nil {
					mu.Lock()
					result.Failed++
					result.Errors = append(result.Errors, VerifyError{
						Path:    name,
						SrcHash: "error",
						DstHash: "n/a",
					})
					mu.Unlock()
					cfg.Stats.AddVerifyFailed(1)
					emitEvent(cfg.Events, event.Event{
						Type:  event.VerifyFailed,
						Track: task.Track.Number,
						Path:  task.DstPath,
						Error: err,
					})
					continue
				}

				dstHash, err := HashRange(ctx, task.DstPath, 0, task.Length, false, cfg.Limiter)
				if err != nil {
					mu.Lock()
					result.Failed++
					result.Errors = append(result.Errors, VerifyError{
						Path:    name,
						SrcHash: srcHash,
						DstHash: "error",
					})
					mu.Unlock()
					cfg.Stats.AddVerifyFailed(1)
					emitEvent(cfg.Events, event.Event{
						Type:  event.VerifyFailed,
						Track: task.Track.Number,
						Path:  task.DstPath,
						Error: err,
					})
					continue
				}

				if srcHash != dstHash {
					mu.Lock()
					result.Failed++
					result.Errors = append(result.Errors, VerifyError{
						Path:    name,
						SrcHash: srcHash,
						DstHash: dstHash,
					})
					mu.Unlock()
					cfg.Stats.AddVerifyFailed(1)
					emitEvent(cfg.Events, event.Event{
						Type:  event.VerifyFailed,
						Track: task.Track.Number,
						Path:  task.DstPath,
					})
				} else {
					mu.Lock()
					result.Verified++
					mu.Unlock()
					cfg.Stats.AddTracksVerified(1)
					emitEvent(cfg.Events, event.Event{
						Type:  event.VerifyOK,
						Track: task.Track.Number,
						Path:  task.DstPath,
					})
				}
			}
		}()
	}

send:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break send
		case taskCh <- task:
		}
	}
	close(taskCh)
	wg.Wait()

	return result
}

func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
