package directive

import (
	"bytes"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/query"
)

func TestParsePipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		directives []ast.Directive
		wantKept   bool
		wantKinds  []string
	}{
		{
			name:     "no directives",
			wantKept: true,
		},
		{
			name: "compare feeds include",
			directives: []ast.Directive{
				directive("compare", arg("value", 5), arg("gte", 3), arg("lt", 10)),
				directive("include"),
			},
			wantKept: true,
		},
		{
			name: "failed compare removes through include",
			directives: []ast.Directive{
				directive("compare", arg("value", 5), arg("eq", 6)),
				directive("include"),
			},
		},
		{
			name: "removal is sticky",
			directives: []ast.Directive{
				directive("skip", arg("if", true)),
				directive("include", arg("if", true)),
			},
		},
		{
			name: "post-executed directives register in order",
			directives: []ast.Directive{
				directive("diff", arg("by", "lastMonth")),
				directive("omit"),
			},
			wantKept:  true,
			wantKinds: []string{"diff", "omit"},
		},
		{
			name: "post-executed directives register on removed fields",
			directives: []ast.Directive{
				directive("include", arg("if", false)),
				directive("omit", arg("full", true)),
			},
			wantKinds: []string{"omit"},
		},
		{
			name:       "unknown directives are ignored",
			directives: []ast.Directive{directive("deprecated", arg("reason", "x"))},
			wantKept:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := query.New("current")
			q.Path = "[@day=:day].revenue"
			node := &ast.Node{Name: "revenue", Directives: tt.directives}

			got, err := Parse(node, q, Options{On: OnMetric})
			require.NoError(t, err)
			if tt.wantKept {
				require.NotNil(t, got)
				assert.Equal(t, "revenue", got.Name)
			} else {
				assert.Nil(t, got)
			}

			kinds := make([]string, 0, len(q.Directives))
			for _, d := range q.Directives {
				kinds = append(kinds, d.Kind())
				assert.Equal(t, q.Path, d.Path())
			}
			assert.Equal(t, len(tt.wantKinds), len(kinds))
			if len(tt.wantKinds) > 0 {
				assert.Equal(t, tt.wantKinds, kinds)
			}
		})
	}
}

func TestParsePathOverride(t *testing.T) {
	t.Parallel()

	q := query.New("current")
	q.Path = "[@day=:day].revenue"
	node := &ast.Node{Name: "status", Directives: []ast.Directive{directive("filter", arg("status", "active"))}}

	_, err := Parse(node, q, Options{On: OnDimension, Path: "[@day=:day]"})
	require.NoError(t, err)
	require.Len(t, q.Directives, 1)
	assert.Equal(t, "[@day=:day]", q.Directives[0].Path())
}

func TestParseWithoutQuery(t *testing.T) {
	t.Parallel()

	node := &ast.Node{Name: "revenue", Directives: []ast.Directive{
		directive("diff"),
		directive("include", arg("if", true)),
	}}

	got, err := Parse(node, nil, Options{})
	require.NoError(t, err)
	assert.Same(t, node, got)

	got, err = Parse(nil, nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseErrorLeavesQueryUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		directives []ast.Directive
		err        error
	}{
		{
			name:       "missing by",
			directives: []ast.Directive{directive("omit"), directive("diff")},
			err:        ErrArgument,
		},
		{
			name:       "indexed with both",
			directives: []ast.Directive{directive("omit"), directive("indexed", arg("to", "a"), arg("group", "g"))},
			err:        ErrArgument,
		},
		{
			name:       "indexed with neither",
			directives: []ast.Directive{directive("indexed")},
			err:        ErrArgument,
		},
		{
			name:       "filter without conditions",
			directives: []ast.Directive{directive("filter")},
			err:        ErrArgument,
		},
		{
			name:       "groupOn with replacers only",
			directives: []ast.Directive{directive("groupOn", arg("replacers", map[string]any{"a": 1}))},
			err:        ErrArgument,
		},
		{
			name:       "groupOn replacers not an object",
			directives: []ast.Directive{directive("groupOn", arg("category", "a"), arg("replacers", "x"))},
			err:        ErrArgument,
		},
		{
			name:       "groupBy unknown unit",
			directives: []ast.Directive{directive("groupBy", arg("by", "fortnight"))},
			err:        ErrArgument,
		},
		{
			name:       "divide without reference",
			directives: []ast.Directive{directive("divide")},
			err:        ErrArgument,
		},
		{
			name:       "compare unknown operator",
			directives: []ast.Directive{directive("omit"), directive("compare", arg("value", 1), arg("like", 1))},
			err:        ErrResolverNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := query.New("current")
			node := &ast.Node{Name: "revenue", Directives: tt.directives}

			got, err := Parse(node, q, Options{On: OnMetric})
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, got)
			assert.Empty(t, q.Directives)
		})
	}
}

func TestParseGroupByNeedsName(t *testing.T) {
	t.Parallel()

	q := query.New("current")
	node := &ast.Node{Directives: []ast.Directive{directive("groupBy", arg("by", "month"))}}

	_, err := Parse(node, q, Options{On: OnDimension})
	var missing *ConfigurationMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, KindGroupBy, missing.Directive)
}

func TestParseLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowDebug())

	q := query.New("current")
	node := &ast.Node{Name: "revenue", Directives: []ast.Directive{
		directive("omit"),
		directive("skip", arg("if", true)),
	}}

	_, err := Parse(node, q, Options{On: OnMetric, Path: "[@day=:day].revenue", Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="field removed"`)
	assert.Contains(t, out, `msg="directive registered"`)
	assert.Contains(t, out, "query=current")
}
