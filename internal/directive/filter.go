package directive

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/query"
	"github.com/jacoelho/resultshape/internal/resolver"
)

// filter drops emissions. On a metric it tests the value itself; on a
// dimension it tests the sibling fields of the row's container and remembers
// every excluded row.
type filter struct {
	base
	conditions resolver.Conditions
	excluded   *roaring.Bitmap
}

func newFilter(b base, args ast.Arguments) (*filter, error) {
	if len(args) == 0 {
		return nil, argumentError(b.kind, "requires at least one condition")
	}
	return &filter{base: b, conditions: conditions(args), excluded: roaring.New()}, nil
}

func conditions(args ast.Arguments) resolver.Conditions {
	out := make(resolver.Conditions, 0, len(args))
	for _, arg := range args {
		out = append(out, resolver.ParseCondition(arg.Name, arg.Value))
	}
	return out
}

func (f *filter) Transform(in query.TransformInput) (query.TransformOutput, error) {
	if in.Origin == nil {
		return query.TransformOutput{}, nil
	}

	if f.on == OnMetric {
		return query.TransformOutput{Skip: f.conditions.Rejects(in.Value)}, nil
	}

	row := uint32(in.Row)
	if f.excluded.Contains(row) {
		return query.TransformOutput{Skip: true, SkipAll: true}, nil
	}

	fields, ok := f.container(in)
	if !ok || f.rejects(fields) {
		f.excluded.Add(row)
		return query.TransformOutput{Skip: true, SkipAll: true}, nil
	}

	return query.TransformOutput{}, nil
}

// rejects reports whether any present field fails one of its conditions.
func (f *filter) rejects(fields map[string]any) bool {
	for _, field := range f.conditions.Fields() {
		v, ok := fields[field]
		if field == "" || !ok {
			continue
		}
		if f.conditions.For(field).Rejects(v) {
			return true
		}
	}
	return false
}
