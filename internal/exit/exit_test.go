package exit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jacoelho/resultshape/internal/config"
	"github.com/jacoelho/resultshape/internal/directive"
	"github.com/jacoelho/resultshape/internal/execute"
	"github.com/jacoelho/resultshape/internal/output"
	"github.com/jacoelho/resultshape/internal/querydoc"
)

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: CodeOK},
		{name: "config", err: config.ErrNoQueryFile, want: CodeUsage},
		{name: "wrapped config", err: fmt.Errorf("flags: %w", config.ErrInvalidSelector), want: CodeUsage},
		{name: "document", err: fmt.Errorf("%w: no queries", querydoc.ErrDocument), want: CodeInput},
		{name: "rows", err: output.ErrDecode, want: CodeInput},
		{name: "unplaced rows", err: execute.ErrRows, want: CodeInput},
		{name: "directive", err: &directive.ArgumentError{Directive: directive.KindDiff, Reason: "requires `by`"}, want: CodeDirective},
		{name: "timeout", err: context.DeadlineExceeded, want: CodeFailure},
		{name: "other", err: errors.New("boom"), want: CodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := FromError(fmt.Errorf("%w: no queries", querydoc.ErrDocument)).WithOutput(&buf)
	result.Print()

	assert.Equal(t, CodeInput, result.ExitCode)
	assert.Equal(t, "Error: query document error: no queries\n", buf.String())

	assert.Equal(t, CodeOK, FromError(nil).ExitCode)
}

func TestResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Success("done\n").WithOutput(&buf).Print()
	Errorf("failed %d\n", 2).WithOutput(&buf).Print()

	assert.Equal(t, "done\nfailed 2\n", buf.String())
	assert.Equal(t, CodeFailure, Error("x").ExitCode)
}
