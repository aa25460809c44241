package directive

import (
	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/number"
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
)

// divide divides a value by the same cell of query `by`, by a sibling field
// of the same row, or by both combined.
type divide struct {
	base
	by      string
	byField string
}

func newDivide(b base, args ast.Arguments) (*divide, error) {
	by, _ := args.String("by")
	byField, _ := args.String("byField")
	if by == "" && byField == "" {
		return nil, argumentError(b.kind, "requires `by` or `byField`")
	}
	return &divide{base: b, by: by, byField: byField}, nil
}

func (d *divide) Transform(in query.TransformInput) (query.TransformOutput, error) {
	out := query.TransformOutput{}.WithValue(in.Value)
	if in.Origin == nil {
		return out, nil
	}

	path := in.ReplacedPath
	if d.byField != "" {
		path = progressive.Child(progressive.Parent(path), d.byField)
	}

	var (
		denominator any
		found       bool
	)
	if d.by != "" {
		var err error
		denominator, found, err = counterpart(d.kind, in, d.by, path)
		if err != nil {
			return query.TransformOutput{}, err
		}
	} else {
		denominator, found = progressive.Get(in.Own(d.query), path, d.query.Hash)
	}

	value, ok := number.ToFloat64(in.Value)
	that, thatOK := number.ToFloat64(denominator)
	if !found || !ok || !thatOK || that == 0 {
		return out.WithValue(nil), nil
	}

	return out.WithValue(value / that), nil
}
