package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
)

const (
	dayPath     = "[@day=:day].revenue"
	dayCategory = "[@day=:day]"
)

func compileOn(t *testing.T, q *query.Query, on On, path, field string, d ast.Directive) query.Transformer {
	t.Helper()

	before := len(q.Directives)
	_, err := Parse(&ast.Node{Name: field, Directives: []ast.Directive{d}}, q, Options{On: on, Path: path})
	require.NoError(t, err)
	require.Len(t, q.Directives, before+1)

	return q.Directives[before]
}

// cells builds a query tree with one [@key=...] container per row.
func cells(t *testing.T, q *query.Query, key string, rows ...map[string]any) any {
	t.Helper()

	var tree any
	for _, row := range rows {
		container := "[@" + key + "=" + progressive.Shield(row[key].(string)) + "]"
		for k, v := range row {
			if k == key {
				continue
			}
			var err error
			tree, err = progressive.Set(tree, progressive.Child(container, k), v, q.Hash)
			require.NoError(t, err)
		}
	}
	return tree
}

func TestOmit(t *testing.T) {
	t.Parallel()

	q := query.New("current")
	partial := compileOn(t, q, OnMetric, dayPath, "revenue", directive("omit"))
	full := compileOn(t, q, OnMetric, dayPath, "revenue", directive("omit", arg("full", true)))

	out, err := partial.Transform(query.TransformInput{Value: 1})
	require.NoError(t, err)
	assert.False(t, out.Skip)

	out, err = partial.Transform(query.TransformInput{Value: 1, Origin: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, out.Skip)

	out, err = full.Transform(query.TransformInput{Value: 1})
	require.NoError(t, err)
	assert.True(t, out.Skip)
}

func TestDifference(t *testing.T) {
	t.Parallel()

	current := query.New("current")
	lastMonth := query.New("lastMonth")
	batches := query.Batches{"current": {current}, "lastMonth": {lastMonth}}
	origin := map[string]any{
		"current":   cells(t, current, "day", map[string]any{"day": "2024-02-01", "revenue": 150}),
		"lastMonth": cells(t, lastMonth, "day", map[string]any{"day": "2024-02-01", "revenue": 100}, map[string]any{"day": "2024-02-02", "revenue": 0}),
	}

	diff := compileOn(t, current, OnMetric, dayPath, "revenue", directive("diff", arg("by", "lastMonth")))
	subtract := compileOn(t, current, OnMetric, dayPath, "revenue", directive("subtract", arg("by", "lastMonth")))
	dangling := compileOn(t, current, OnMetric, dayPath, "revenue", directive("diff", arg("by", "nextMonth")))

	in := query.TransformInput{
		Path:         dayPath,
		ReplacedPath: "[@day=2024-02-01].revenue",
		Value:        150,
		Key:          "revenue",
		Origin:       origin,
		Batches:      batches,
		Query:        current,
	}

	tests := []struct {
		name string
		t    query.Transformer
		in   func(query.TransformInput) query.TransformInput
		want any
	}{
		{name: "diff", t: diff, in: same, want: 0.5},
		{name: "subtract", t: subtract, in: same, want: 50.0},
		{
			name: "diff passes through without origin",
			t:    diff,
			in: func(in query.TransformInput) query.TransformInput {
				in.Origin = nil
				return in
			},
			want: 150,
		},
		{
			name: "missing counterpart",
			t:    diff,
			in: func(in query.TransformInput) query.TransformInput {
				in.ReplacedPath = "[@day=2024-03-01].revenue"
				return in
			},
			want: nil,
		},
		{
			name: "zero counterpart",
			t:    diff,
			in: func(in query.TransformInput) query.TransformInput {
				in.ReplacedPath = "[@day=2024-02-02].revenue"
				return in
			},
			want: nil,
		},
		{
			name: "subtract from zero",
			t:    subtract,
			in: func(in query.TransformInput) query.TransformInput {
				in.ReplacedPath = "[@day=2024-02-02].revenue"
				return in
			},
			want: 150.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.t.Transform(tt.in(in))
			require.NoError(t, err)
			require.True(t, out.HasValue)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, out.Value, 1e-9)
				return
			}
			assert.Equal(t, tt.want, out.Value)
		})
	}

	_, err := dangling.Transform(in)
	var missing *ConfigurationMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "query nextMonth", missing.Subject)
}

func same(in query.TransformInput) query.TransformInput { return in }

func TestDivide(t *testing.T) {
	t.Parallel()

	current := query.New("current")
	budget := query.New("budget")
	batches := query.Batches{"current": {current}, "budget": {budget}}
	origin := map[string]any{
		"current": cells(t, current, "day", map[string]any{"day": "2024-02-01", "revenue": 30, "orders": 3, "refunds": 0}),
		"budget":  cells(t, budget, "day", map[string]any{"day": "2024-02-01", "revenue": 60}),
	}

	byQuery := compileOn(t, current, OnMetric, dayPath, "revenue", directive("divide", arg("by", "budget")))
	byField := compileOn(t, current, OnMetric, dayPath, "revenue", directive("divide", arg("byField", "orders")))
	byZero := compileOn(t, current, OnMetric, dayPath, "revenue", directive("divide", arg("byField", "refunds")))

	in := query.TransformInput{
		Path:         dayPath,
		ReplacedPath: "[@day=2024-02-01].revenue",
		Value:        30,
		Key:          "revenue",
		Origin:       origin,
		Batches:      batches,
		Query:        current,
	}

	out, err := byQuery.Transform(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out.Value, 1e-9)

	out, err = byField.Transform(in)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.Value, 1e-9)

	out, err = byZero.Transform(in)
	require.NoError(t, err)
	assert.True(t, out.HasValue)
	assert.Nil(t, out.Value)

	in.Origin = nil
	out, err = byField.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Value)
}

func TestIndexedGroup(t *testing.T) {
	t.Parallel()

	a, b, c := query.New("a"), query.New("b"), query.New("c")
	other := query.New("other")
	batches := query.Batches{"a": {a}, "b": {b}, "c": {c}, "other": {other}}

	ia := compileOn(t, a, OnMetric, dayPath, "revenue", directive("indexed", arg("group", "g1")))
	compileOn(t, b, OnMetric, dayPath, "revenue", directive("indexed", arg("group", "g1")))
	compileOn(t, c, OnMetric, "[@day=:day].visits", "visits", directive("indexed", arg("group", "g1")))
	compileOn(t, other, OnMetric, dayPath, "revenue", directive("indexed", arg("group", "g2")))

	origin := map[string]any{
		"a":     cells(t, a, "day", map[string]any{"day": "2024-01-01", "revenue": 10}, map[string]any{"day": "2024-01-02", "revenue": 20}),
		"b":     cells(t, b, "day", map[string]any{"day": "2024-01-01", "revenue": 40}),
		"c":     cells(t, c, "day", map[string]any{"day": "2024-01-01", "visits": 25, "revenue": 99}),
		"other": cells(t, other, "day", map[string]any{"day": "2024-01-01", "revenue": 1000}),
	}

	in := query.TransformInput{Path: dayPath, Value: 10, Key: "revenue", Batches: batches, Query: a}

	out, err := ia.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Value, "passes through until the origin exists")

	in.Origin = origin
	out, err = ia.Transform(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out.Value, 1e-9)

	in.Value = "n/a"
	out, err = ia.Transform(in)
	require.NoError(t, err)
	assert.Nil(t, out.Value)
}

func TestIndexedTo(t *testing.T) {
	t.Parallel()

	a, b := query.New("a"), query.New("b")
	batches := query.Batches{"a": {a}, "b": {b}}
	ia := compileOn(t, a, OnMetric, dayPath, "revenue", directive("indexed", arg("to", "b")))

	origin := map[string]any{
		"a": cells(t, a, "day", map[string]any{"day": "2024-01-01", "revenue": 5}),
		"b": cells(t, b, "day", map[string]any{"day": "2024-01-01", "revenue": 20}),
	}

	out, err := ia.Transform(query.TransformInput{Value: 5, Origin: origin, Batches: batches, Query: a})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out.Value, 1e-9)

	missing := compileOn(t, a, OnMetric, dayPath, "revenue", directive("indexed", arg("to", "z")))
	_, err = missing.Transform(query.TransformInput{Value: 5, Origin: origin, Batches: batches, Query: a})
	require.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestFilterDimension(t *testing.T) {
	t.Parallel()

	q := query.New("current")
	batches := query.Batches{"current": {q}}
	f := compileOn(t, q, OnDimension, dayCategory, "status", directive("filter", arg("status_eq", "active")))

	origin := map[string]any{"current": cells(t, q, "day",
		map[string]any{"day": "2024-01-01", "status": "active", "revenue": 1},
		map[string]any{"day": "2024-01-02", "status": "inactive", "revenue": 2},
	)}

	in := func(row query.RowID, day string) query.TransformInput {
		return query.TransformInput{
			Row:                row,
			Path:               dayPath,
			GlobalReplacedPath: "[@day=" + day + "]",
			Origin:             origin,
			Batches:            batches,
			Query:              q,
		}
	}

	out, err := f.Transform(query.TransformInput{Row: 1, Batches: batches, Query: q})
	require.NoError(t, err)
	assert.Equal(t, query.TransformOutput{}, out, "no-op without origin")

	out, err = f.Transform(in(0, "2024-01-01"))
	require.NoError(t, err)
	assert.False(t, out.Skip)
	assert.False(t, out.SkipAll)

	out, err = f.Transform(in(1, "2024-01-02"))
	require.NoError(t, err)
	assert.True(t, out.Skip)
	assert.True(t, out.SkipAll)

	// the excluded row short-circuits even when its container would pass
	out, err = f.Transform(in(1, "2024-01-01"))
	require.NoError(t, err)
	assert.True(t, out.SkipAll)

	out, err = f.Transform(in(2, "2024-09-09"))
	require.NoError(t, err)
	assert.True(t, out.SkipAll, "rows without a container are excluded")
}

func TestFilterMetric(t *testing.T) {
	t.Parallel()

	q := query.New("current")
	f := compileOn(t, q, OnMetric, dayPath, "revenue", directive("filter", arg("gte", 10), arg("lt", 100)))

	for value, skip := range map[int]bool{5: true, 10: false, 99: false, 100: true} {
		out, err := f.Transform(query.TransformInput{Value: value, Origin: map[string]any{}, Query: q})
		require.NoError(t, err)
		assert.Equal(t, skip, out.Skip, "value %d", value)
		assert.False(t, out.SkipAll)
	}
}
