package cuesheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFiles reports a sheet with zero FILE directives. There is nothing
// to extract, and callers must not create an output directory for it.
var ErrNoFiles = errors.New("cue sheet declares no files")

// Issue classifies one kind of resolution failure.
type Issue int

const (
	MissingFile Issue = iota
	WrongFormat
	UnknownMode
)

func (i Issue) String() string {
	switch i {
	case MissingFile:
		return "missing file"
	case WrongFormat:
		return "not BINARY"
	case UnknownMode:
		return "unknown mode"
	default:
		return "unknown issue"
	}
}

// ResolutionError reports every file and track that keeps a sheet from
// resolving, grouped by issue. The whole batch is collected before
// failing so a bad sheet can be fixed in one pass instead of one error
// at a time.
type ResolutionError struct {
	Issues map[Issue][]string
}

func (e *ResolutionError) add(i Issue, item string) {
	if e.Issues == nil {
		e.Issues = make(map[Issue][]string)
	}
	e.Issues[i] = append(e.Issues[i], item)
}

func (e *ResolutionError) empty() bool {
	return len(e.Issues) == 0
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("cannot resolve cue sheet")
	for _, issue := range []Issue{MissingFile, WrongFormat, UnknownMode} {
		for _, item := range e.Issues[issue] {
			fmt.Fprintf(&b, "\n  %s: %s", issue, item)
		}
	}
	return b.String()
}
