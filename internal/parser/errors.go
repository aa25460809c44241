package parser

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates a malformed field declaration.
var ErrSyntax = errors.New("invalid field declaration")

func syntaxError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}
