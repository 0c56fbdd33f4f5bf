package engine

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/cuesplit/internal/cuesheet"
	"github.com/bamsammich/cuesplit/internal/event"
	"github.com/bamsammich/cuesplit/internal/layout"
)

// writeSheet writes a cue sheet body under dir and returns its path.
func writeSheet(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// makeImage fills path with size random bytes and returns them.
func makeImage(t *testing.T, path string, size int64) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return data
}

// parseFixture parses and resolves a sheet that is expected to be valid.
func parseFixture(t *testing.T, path string) *cuesheet.Sheet {
	t.Helper()
	sheet, err := cuesheet.Parse(path, cuesheet.EncodingUTF8)
	require.NoError(t, err)
	require.NoError(t, layout.Resolve(sheet))
	return sheet
}

// readOut reads an extracted output file.
func readOut(t *testing.T, outDir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outDir, name))
	require.NoError(t, err)
	return data
}

// drainEvents creates a buffered event channel, spawns a goroutine to drain
// it, and registers cleanup. Returns the channel for use in engine.Config.
func drainEvents(t *testing.T) chan<- event.Event {
	t.Helper()
	ch := make(chan event.Event, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:revive // empty-block: intentionally draining event channel
		for range ch {
		}
	}()
	t.Cleanup(func() {
		close(ch)
		<-done
	})
	return ch
}

// collectEvents creates a buffered event channel that records all events.
// Returns the channel for engine.Config and a function to retrieve collected
// events. The getter closes the channel and waits for the drain goroutine,
// so it is safe to read the slice. It may be called at most once. If the
// getter is never called, t.Cleanup closes the channel on test exit.
func collectEvents(t *testing.T) (chan<- event.Event, func() []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 4096)
	var collected []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			collected = append(collected, ev)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() { close(ch) })
		<-done
	}
	t.Cleanup(drain)
	return ch, func() []event.Event {
		drain()
		return collected
	}
}

// eventsOfType filters collected events by type.
func eventsOfType(events []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// findTmpFiles returns any .cuesplit-tmp files found under root.
func findTmpFiles(t *testing.T, root string) []string {
	t.Helper()
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasSuffix(d.Name(), ".cuesplit-tmp") {
			found = append(found, path)
		}
		return nil
	})
	require.NoError(t, err)
	return found
}
