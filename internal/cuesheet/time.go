package cuesheet

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime converts a CUE mm:ss:ff timestamp to frames. Fields need
// not be zero-padded, and values past the conventional 0-59/0-74 ranges
// are folded into the total rather than rejected; sheets in the wild
// are sloppy and the arithmetic only cares about the frame count.
func ParseTime(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}
	var v [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed timestamp %q", s)
		}
		v[i] = n
	}
	return v[0]*FramesPerMinute + v[1]*FramesPerSecond + v[2], nil
}

// FormatTime renders frames as a zero-padded mm:ss:ff timestamp.
func FormatTime(frames int64) string {
	m := frames / FramesPerMinute
	s := frames % FramesPerMinute / FramesPerSecond
	f := frames % FramesPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", m, s, f)
}
