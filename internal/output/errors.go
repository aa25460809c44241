package output

import (
	"errors"
)

// Sentinel errors for reading rows and rendering results.
var (
	// ErrDecode indicates rows that are not valid JSON or not shaped as
	// {"<query>": [{...}, ...]}.
	ErrDecode = errors.New("decode error")

	// ErrInvalidInput indicates invalid parameters, such as an empty
	// selector.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a selector that matched nothing.
	ErrNotFound = errors.New("not found")
)

// IsNotFound checks if an error indicates that a selector matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
