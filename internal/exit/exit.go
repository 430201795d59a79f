package exit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/yamlpath/internal/document"
	"github.com/jacoelho/yamlpath/internal/eyaml"
	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
	"github.com/jacoelho/yamlpath/internal/ypath"
)

// Exit codes.
const (
	CodeOK        = 0
	CodeUsage     = 1
	CodeNotFound  = 2
	CodeStructure = 3
	CodeIO        = 4
	CodeTransform = 5
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeOK,
		Message:  message,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeUsage,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError creates an error exit result whose code reflects the kind of err.
// A nil err is a silent success.
func FromError(err error) *Result {
	if err == nil {
		return &Result{Output: os.Stdout, ExitCode: CodeOK}
	}
	return &Result{
		Output:   os.Stderr,
		ExitCode: Code(err),
		Message:  fmt.Sprintf("ERROR: %v\n", err),
	}
}

// Code maps err to an exit code.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, processor.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, processor.ErrStructureMismatch),
		errors.Is(err, processor.ErrDuplicateKey),
		errors.Is(err, processor.ErrRecursion):
		return CodeStructure
	case errors.Is(err, document.ErrIO), errors.Is(err, yamlnode.ErrLoad), errors.Is(err, yamlnode.ErrEmit):
		return CodeIO
	case errors.Is(err, eyaml.ErrCommandUnavailable), errors.Is(err, eyaml.ErrTransformFailure):
		return CodeTransform
	case errors.Is(err, ypath.ErrMalformedExpression):
		return CodeUsage
	}
	return CodeUsage
}
