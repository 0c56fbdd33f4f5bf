package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/cuesplit/internal/stats"
)

// FormatRate renders a transfer rate with three significant figures.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}

	units := [...]string{"B/s", "KB/s", "MB/s", "GB/s", "TB/s", "PB/s"}
	v := bytesPerSec
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}

	switch {
	case v < 10:
		return fmt.Sprintf("%.2f %s", v, units[i])
	case v < 100:
		return fmt.Sprintf("%.1f %s", v, units[i])
	default:
		return fmt.Sprintf("%.0f %s", v, units[i])
	}
}

// FormatETA renders a countdown, or -- before an estimate exists.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// FormatCount renders n with comma grouping.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

// ProgressBar renders pct as a width-cell bar of ▪ and □ glyphs.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	switch {
	case pct < 0:
		pct = 0
	case pct > 1:
		pct = 1
	}
	fill := int(pct * float64(width))
	return strings.Repeat("▪", fill) + strings.Repeat("□", width-fill)
}

// WorkerIndicator renders one cell per worker, filled while busy.
func WorkerIndicator(busy, total int) string {
	switch {
	case busy < 0:
		busy = 0
	case busy > total:
		busy = total
	}
	return strings.Repeat("▪", busy) + strings.Repeat("□", total-busy)
}

// FormatBytes re-exports stats.FormatBytes for presenter call sites.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration renders an elapsed time as 1h 02m 03s, trimming leading
// zero fields.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
