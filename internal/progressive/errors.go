package progressive

import "errors"

var (
	// ErrSyntax indicates a malformed path expression.
	ErrSyntax = errors.New("progressive: syntax error")

	// ErrShape indicates a path step that cannot address the value found at
	// its position, such as a key step against a sequence on write.
	ErrShape = errors.New("progressive: path does not fit tree shape")
)
