package directive

import (
	"fmt"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/calendar"
	"github.com/jacoelho/resultshape/internal/number"
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
	"github.com/jacoelho/resultshape/internal/resolver"
)

const argReplacers = "replacers"

// bucket sums emissions into the result container a rewritten path points at.
type bucket struct {
	// hash caches lookups into the result tree under construction.
	hash progressive.HashContext
}

// emit rewrites the emission to newPath, adding the value to whatever the
// bucket already holds. On a row's first sighting the emission itself is
// suppressed and the bucket is seeded through replacers instead.
func (b *bucket) emit(in query.TransformInput, newPath string, current map[string]any, seen bool, overlay map[string]any) query.TransformOutput {
	group, _ := progressive.Get(in.Result, progressive.Parent(newPath), b.hash)
	groupData, _ := group.(map[string]any)

	total := in.Value
	if sum, ok := number.Add(groupData[in.Key], in.Value); ok {
		total = sum
	}

	out := query.TransformOutput{Path: newPath, Skip: !seen}.WithValue(total)
	if seen {
		return out
	}

	replacers := make(map[string]any, len(current)+len(groupData)+len(overlay)+1)
	for k, v := range current {
		// other metrics of the row are summed by their own emissions
		if k != in.Key && in.Query != nil && slices.Contains(in.Query.Metrics, k) {
			continue
		}
		replacers[k] = v
	}
	maps.Copy(replacers, groupData)
	maps.Copy(replacers, overlay)
	replacers[in.Key] = total
	out.Replacers = replacers

	return out
}

// groupOn folds rows whose container passes every condition on at least one
// field into the bucket addressed by the path with replacers applied.
type groupOn struct {
	base
	bucket
	conditions resolver.Conditions
	replacers  map[string]any
	members    *roaring.Bitmap
	checked    *roaring.Bitmap
}

func newGroupOn(b base, args ast.Arguments) (*groupOn, error) {
	rest := args.Without(argReplacers)
	if len(rest) == 0 {
		return nil, argumentError(b.kind, "requires at least one grouping condition")
	}

	var replacers map[string]any
	if v, ok := args.Get(argReplacers); ok && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, argumentError(b.kind, "`replacers` must be an object, got %T", v)
		}
		replacers = m
	}

	return &groupOn{
		base:       b,
		bucket:     bucket{hash: progressive.NewHashContext()},
		conditions: conditions(rest),
		replacers:  replacers,
		members:    roaring.New(),
		checked:    roaring.New(),
	}, nil
}

func (g *groupOn) Transform(in query.TransformInput) (query.TransformOutput, error) {
	if in.Origin == nil {
		return query.TransformOutput{}, nil
	}

	current, _ := g.container(in)

	row := uint32(in.Row)
	seen := g.members.Contains(row)
	matched := seen || (!g.checked.Contains(row) && g.admits(current))
	g.checked.Add(row)
	if !matched {
		return query.TransformOutput{}, nil
	}
	g.members.Add(row)

	vars := maps.Clone(in.Data)
	if vars == nil {
		vars = make(map[string]any, len(g.replacers))
	}
	maps.Copy(vars, g.replacers)
	newPath := progressive.StripJoinMarkers(progressive.ReplaceVars(in.Path, vars))

	return g.emit(in, newPath, current, seen, g.replacers), nil
}

// admits is the negation of a rejection: some field present in fields
// passes all of its conditions.
func (g *groupOn) admits(fields map[string]any) bool {
	for _, field := range g.conditions.Fields() {
		v, ok := fields[field]
		if field == "" || !ok {
			continue
		}
		if !g.conditions.For(field).Rejects(v) {
			return true
		}
	}
	return false
}

// groupBy folds every row into the calendar bucket of its own date field.
type groupBy struct {
	base
	bucket
	unit    calendar.Unit
	buckets map[query.RowID]string
}

func newGroupBy(b base, args ast.Arguments) (*groupBy, error) {
	by, ok := args.String("by")
	if !ok {
		return nil, argumentError(b.kind, "requires `by`")
	}
	unit, err := calendar.ParseUnit(by)
	if err != nil {
		return nil, argumentError(b.kind, "`by`: %v", err)
	}
	if b.name == "" {
		return nil, &ConfigurationMissingError{Directive: b.kind, Subject: "a named field"}
	}

	return &groupBy{
		base:    b,
		bucket:  bucket{hash: progressive.NewHashContext()},
		unit:    unit,
		buckets: make(map[query.RowID]string),
	}, nil
}

func (g *groupBy) Transform(in query.TransformInput) (query.TransformOutput, error) {
	if in.Origin == nil {
		return query.TransformOutput{}, nil
	}

	current, _ := g.container(in)

	key, seen := g.buckets[in.Row]
	if !seen {
		raw, _ := in.Data[g.name].(string)
		var err error
		key, err = calendar.Bucket(raw, g.unit)
		if err != nil {
			return query.TransformOutput{}, fmt.Errorf("@%s %s: %w", g.kind, g.name, err)
		}
		g.buckets[in.Row] = key
	}

	vars := maps.Clone(in.Data)
	if vars == nil {
		vars = make(map[string]any, 1)
	}
	vars[g.name] = key
	newPath := progressive.StripJoinMarkers(progressive.ReplaceVars(in.Path, vars))

	// nested containers keep the bucket on the dimension's own level
	var overlay map[string]any
	if _, ok := current[g.name]; ok {
		overlay = map[string]any{g.name: key}
	}

	return g.emit(in, newPath, current, seen, overlay), nil
}
