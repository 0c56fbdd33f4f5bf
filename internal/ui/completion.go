package ui

import (
	"fmt"

	"github.com/bamsammich/cuesplit/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  tracks 14  size 702.1 MiB  avg 641 MB/s  time 3s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesExtracted) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.TracksFailed > 0 || snap.VerifyFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  tracks %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.TracksExtracted),
		FormatBytes(snap.BytesExtracted),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)

	if snap.TracksEncoded > 0 {
		base += fmt.Sprintf("  encoded %s", FormatCount(snap.TracksEncoded))
	}

	if snap.TracksVerified > 0 || snap.VerifyFailed > 0 {
		base += fmt.Sprintf("  verified %s", FormatCount(snap.TracksVerified))
	}

	if snap.SheetsWritten > 0 {
		base += fmt.Sprintf("  sheets %d", snap.SheetsWritten)
	}

	base += fmt.Sprintf("  errors %d", snap.TracksFailed+snap.VerifyFailed)

	return base
}
