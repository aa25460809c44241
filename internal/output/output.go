// Package output decodes result rows and renders shaped results as JSON.
package output

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg/oj"
	"github.com/theory/jsonpath"

	"github.com/jacoelho/resultshape/internal/execute"
)

// DecodeRows reads a JSON object mapping query names to arrays of row
// objects.
func DecodeRows(r io.Reader) (execute.Rows, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %v", ErrDecode, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: rows are empty", ErrDecode)
	}

	data, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrDecode, err)
	}

	top, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object keyed by query, got %T", ErrDecode, data)
	}

	rows := make(execute.Rows, len(top))
	for name, value := range top {
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: rows of %q must be an array, got %T", ErrDecode, name, value)
		}

		decoded := make([]map[string]any, 0, len(list))
		for i, item := range list {
			row, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: row %d of %q must be an object, got %T", ErrDecode, i, name, item)
			}
			decoded = append(decoded, row)
		}
		rows[name] = decoded
	}

	return rows, nil
}

// Select projects data through a JSONPath expression. A single match is
// returned as is; several come back as an array.
func Select(data any, pathExpr string) (any, error) {
	if pathExpr == "" {
		return nil, fmt.Errorf("%w: JSONPath expression is empty", ErrInvalidInput)
	}

	path, err := jsonpath.Parse(pathExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath %s: %v", ErrInvalidInput, pathExpr, err)
	}

	results := path.Select(data)

	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pathExpr)
	case 1:
		return results[0], nil
	default:
		return []any(results), nil
	}
}

// Encode writes v as JSON with sorted keys, indented unless compact.
func Encode(w io.Writer, v any, compact bool) error {
	opts := &oj.Options{Sort: true, Indent: 2}
	if compact {
		opts.Indent = 0
	}

	_, err := fmt.Fprintln(w, oj.JSON(v, opts))
	return err
}
