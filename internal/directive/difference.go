package directive

import (
	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/number"
	"github.com/jacoelho/resultshape/internal/query"
)

// difference compares a value with the same cell of query `by`: diff emits
// the relative change and subtract the absolute one.
type difference struct {
	base
	by string
}

func newDifference(b base, args ast.Arguments) (*difference, error) {
	by, ok := args.String("by")
	if !ok {
		return nil, argumentError(b.kind, "requires `by`")
	}
	return &difference{base: b, by: by}, nil
}

func (d *difference) Transform(in query.TransformInput) (query.TransformOutput, error) {
	out := query.TransformOutput{}.WithValue(in.Value)
	if in.Origin == nil {
		return out, nil
	}

	other, found, err := counterpart(d.kind, in, d.by, in.ReplacedPath)
	if err != nil {
		return query.TransformOutput{}, err
	}

	value, ok := number.ToFloat64(in.Value)
	that, thatOK := number.ToFloat64(other)
	if !found || !ok || !thatOK {
		return out.WithValue(nil), nil
	}

	if d.kind == KindSubtract {
		return out.WithValue(value - that), nil
	}
	if that == 0 {
		return out.WithValue(nil), nil
	}
	return out.WithValue(value/that - 1), nil
}
