package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Converter turns a raw CD audio track (16-bit signed stereo PCM at
// 44.1 kHz) into a WAV file.
type Converter interface {
	Convert(ctx context.Context, rawPath, wavPath string) error
}

// Encoder compresses a WAV file and returns the path of the encoded output.
type Encoder interface {
	Encode(ctx context.Context, wavPath string) (string, error)
}

// CollaboratorError wraps a failed external tool invocation together
// with the tool's captured output.
type CollaboratorError struct {
	Tool   string
	Output string
	Err    error
}

func (e *CollaboratorError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Tool, e.Err, e.Output)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// run executes the tool, folding a failure and its combined output into
// a CollaboratorError.
func run(ctx context.Context, tool string, args ...string) error {
	cmd := commandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &CollaboratorError{Tool: tool, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}
