package exit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/resultshape/internal/config"
	"github.com/jacoelho/resultshape/internal/directive"
	"github.com/jacoelho/resultshape/internal/execute"
	"github.com/jacoelho/resultshape/internal/output"
	"github.com/jacoelho/resultshape/internal/querydoc"
)

// Exit codes.
const (
	CodeOK = iota
	CodeFailure
	CodeUsage
	CodeInput
	CodeDirective
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

// WithOutput redirects the result message to w.
func (r *Result) WithOutput(w io.Writer) *Result {
	r.Output = w
	return r
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
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError classifies err into an exit result. A nil error succeeds
// silently.
func FromError(err error) *Result {
	if err == nil {
		return Success("")
	}

	result := Errorf("Error: %v\n", err)
	result.ExitCode = Code(err)
	return result
}

// Code maps err to an exit code.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, config.ErrNoQueryFile),
		errors.Is(err, config.ErrNoRowsFile),
		errors.Is(err, config.ErrInvalidTimeout),
		errors.Is(err, config.ErrInvalidSelector),
		errors.Is(err, os.ErrNotExist):
		return CodeUsage
	case errors.Is(err, querydoc.ErrDocument),
		errors.Is(err, output.ErrDecode),
		errors.Is(err, execute.ErrRows):
		return CodeInput
	case errors.Is(err, directive.ErrArgument),
		errors.Is(err, directive.ErrResolverNotFound),
		errors.Is(err, directive.ErrConfigurationMissing):
		return CodeDirective
	default:
		return CodeFailure
	}
}
