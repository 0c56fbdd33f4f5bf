package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether f is attached to a terminal. TERM=dumb forces
// plain output even on a real tty.
func IsTTY(f *os.File) bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TermWidth returns f's width in columns, or 80 when the size cannot be
// read.
func TermWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// hudWidth resolves the column budget for HUD feed lines. Non-file
// writers (tests, pipes wrapped in buffers) get the 80-column default.
func hudWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return TermWidth(f)
	}
	return 80
}
