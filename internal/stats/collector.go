package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Writer is the counter surface the engine and its workers write to.
type Writer interface {
	SetTotals(tracks, bytes int64)
	AddTracksExtracted(n int64)
	AddTracksFailed(n int64)
	AddBytesExtracted(n int64)
	AddTracksConverted(n int64)
	AddTracksEncoded(n int64)
	AddTracksVerified(n int64)
	AddVerifyFailed(n int64)
	AddSheetsWritten(n int64)
}

// Reader is the read-only surface presenters consume.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	SparklineData(n int) []float64
	ETA() time.Duration
	Elapsed() time.Duration
}

// ReadTicker is a Reader whose ring buffer is advanced by the consumer.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks extraction statistics using lock-free atomic counters.
type Collector struct {
	tracksTotal     atomic.Int64
	bytesTotal      atomic.Int64
	tracksExtracted atomic.Int64
	tracksFailed    atomic.Int64
	bytesExtracted  atomic.Int64
	tracksConverted atomic.Int64
	tracksEncoded   atomic.Int64
	tracksVerified  atomic.Int64
	verifyFailed    atomic.Int64
	sheetsWritten   atomic.Int64
	startTime       time.Time

	// Ring buffer — written only by presenter's Tick(), not workers.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per second
	ringIdx    int
	ringCount  int // how many samples have been written (capped at ringSize)
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records plan totals (called once after layout).
func (c *Collector) SetTotals(tracks, bytes int64) {
	c.tracksTotal.Store(tracks)
	c.bytesTotal.Store(bytes)
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	TracksTotal     int64
	BytesTotal      int64
	TracksExtracted int64
	TracksFailed    int64
	BytesExtracted  int64
	TracksConverted int64
	TracksEncoded   int64
	TracksVerified  int64
	VerifyFailed    int64
	SheetsWritten   int64
	Elapsed         time.Duration
}

func (c *Collector) AddTracksExtracted(n int64) { c.tracksExtracted.Add(n) }
func (c *Collector) AddTracksFailed(n int64)    { c.tracksFailed.Add(n) }
func (c *Collector) AddBytesExtracted(n int64)  { c.bytesExtracted.Add(n) }
func (c *Collector) AddTracksConverted(n int64) { c.tracksConverted.Add(n) }
func (c *Collector) AddTracksEncoded(n int64)   { c.tracksEncoded.Add(n) }
func (c *Collector) AddTracksVerified(n int64)  { c.tracksVerified.Add(n) }
func (c *Collector) AddVerifyFailed(n int64)    { c.verifyFailed.Add(n) }
func (c *Collector) AddSheetsWritten(n int64)   { c.sheetsWritten.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TracksTotal:     c.tracksTotal.Load(),
		BytesTotal:      c.bytesTotal.Load(),
		TracksExtracted: c.tracksExtracted.Load(),
		TracksFailed:    c.tracksFailed.Load(),
		BytesExtracted:  c.bytesExtracted.Load(),
		TracksConverted: c.tracksConverted.Load(),
		TracksEncoded:   c.tracksEncoded.Load(),
		TracksVerified:  c.tracksVerified.Load(),
		VerifyFailed:    c.verifyFailed.Load(),
		SheetsWritten:   c.sheetsWritten.Load(),
		Elapsed:         c.Elapsed(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesExtracted.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	bytesDelta := currentBytes - c.lastBytes
	c.lastBytes = currentBytes

	c.throughput[c.ringIdx] = bytesDelta
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := seconds
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns the last n bytes/sec samples for rendering.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := n
	if count > c.ringCount {
		count = c.ringCount
	}
	if count == 0 {
		return nil
	}

	data := make([]float64, count)
	for i := 0; i < count; i++ {
		// oldest first
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		data[i] = float64(c.throughput[idx])
	}
	return data
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesExtracted.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"extracted=%d failed=%d bytes=%d converted=%d encoded=%d verified=%d sheets=%d",
		s.TracksExtracted, s.TracksFailed, s.BytesExtracted,
		s.TracksConverted, s.TracksEncoded, s.TracksVerified, s.SheetsWritten,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
