package directive

import (
	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/query"
	"github.com/jacoelho/resultshape/internal/resolver"
)

// omit hides a value that only exists to feed other directives.
type omit struct {
	base
	full bool
}

func newOmit(b base, args ast.Arguments) (*omit, error) {
	full, _ := args.Get("full")
	return &omit{base: b, full: resolver.Truthy(full)}, nil
}

func (o *omit) Transform(in query.TransformInput) (query.TransformOutput, error) {
	return query.TransformOutput{Skip: o.full || in.Origin != nil}, nil
}
