package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/resultshape/internal/ast"
)

func directive(name string, args ...ast.Argument) ast.Directive {
	return ast.Directive{Name: name, Arguments: args}
}

func arg(name string, value any) ast.Argument {
	return ast.Argument{Name: name, Value: value}
}

func TestIncludeSkip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     Kind
		d        ast.Directive
		caller   *ast.Node
		wantKept bool
		wantErr  error
	}{
		{name: "include true", kind: KindInclude, d: directive("include", arg("if", true)), caller: &ast.Node{Name: "a"}, wantKept: true},
		{name: "include false", kind: KindInclude, d: directive("include", arg("if", false)), caller: &ast.Node{Name: "a"}},
		{name: "include null if", kind: KindInclude, d: directive("include", arg("if", nil)), caller: &ast.Node{Name: "a"}},
		{name: "include missing if", kind: KindInclude, d: directive("include"), caller: &ast.Node{Name: "a"}, wantErr: ErrArgument},
		{name: "include prefers resolved value", kind: KindInclude, d: directive("include", arg("if", true)), caller: (&ast.Node{Name: "a"}).WithValue(false)},
		{name: "include resolved without if", kind: KindInclude, d: directive("include"), caller: (&ast.Node{Name: "a"}).WithValue(true), wantKept: true},
		{name: "include removed caller", kind: KindInclude, d: directive("include", arg("if", true)), caller: nil},
		{name: "removed caller still needs if", kind: KindSkip, d: directive("skip"), caller: nil, wantErr: ErrArgument},
		{name: "skip true", kind: KindSkip, d: directive("skip", arg("if", true)), caller: &ast.Node{Name: "a"}},
		{name: "skip false", kind: KindSkip, d: directive("skip", arg("if", false)), caller: &ast.Node{Name: "a"}, wantKept: true},
		{name: "skip resolved", kind: KindSkip, d: directive("skip"), caller: (&ast.Node{Name: "a"}).WithValue(false), wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolvePre(tt.kind, tt.d, tt.caller)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var argErr *ArgumentError
				require.ErrorAs(t, err, &argErr)
				assert.Equal(t, tt.kind, argErr.Directive)
				return
			}
			require.NoError(t, err)
			if tt.wantKept {
				assert.Same(t, tt.caller, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		d       ast.Directive
		caller  *ast.Node
		want    any
		wantErr error
	}{
		{
			name:   "all operators hold",
			d:      directive("compare", arg("value", 5), arg("gte", 3), arg("lt", 10)),
			caller: &ast.Node{Name: "revenue"},
			want:   true,
		},
		{
			name:   "operator fails",
			d:      directive("compare", arg("value", 5), arg("eq", 6)),
			caller: &ast.Node{Name: "revenue"},
			want:   false,
		},
		{
			name:   "false sticks",
			d:      directive("compare", arg("value", 5), arg("lt", 3), arg("gt", 1)),
			caller: &ast.Node{Name: "revenue"},
			want:   false,
		},
		{
			name:   "operators apply to the running value",
			d:      directive("compare", arg("value", 5), arg("gte", 3), arg("eq", true)),
			caller: &ast.Node{Name: "revenue"},
			want:   true,
		},
		{
			name:   "folded result is compared again",
			d:      directive("compare", arg("value", 15), arg("gte", 3), arg("lt", 10)),
			caller: &ast.Node{Name: "revenue"},
			want:   true,
		},
		{
			name:   "value from an earlier directive",
			d:      directive("compare", arg("in", []any{"a", "b"})),
			caller: (&ast.Node{Name: "revenue"}).WithValue("b"),
			want:   true,
		},
		{
			name:    "unknown operator",
			d:       directive("compare", arg("value", 5), arg("eq", 5), arg("between", 1)),
			caller:  &ast.Node{Name: "revenue"},
			wantErr: ErrResolverNotFound,
		},
		{
			name:    "unknown operator after a failure",
			d:       directive("compare", arg("value", 5), arg("eq", 6), arg("between", 1)),
			caller:  &ast.Node{Name: "revenue"},
			wantErr: ErrResolverNotFound,
		},
		{
			name:    "no operator",
			d:       directive("compare", arg("value", 5)),
			caller:  &ast.Node{Name: "revenue"},
			wantErr: ErrArgument,
		},
		{
			name:    "no value",
			d:       directive("compare", arg("eq", 5)),
			caller:  &ast.Node{Name: "revenue"},
			wantErr: ErrArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolvePre(KindCompare, tt.d, tt.caller)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)

			v, ok := got.Resolved()
			require.True(t, ok)
			assert.Equal(t, tt.want, v)

			_, ok = tt.caller.Resolved()
			_, hasValue := tt.d.Arguments.Get("value")
			if tt.caller.Name == "revenue" && hasValue {
				assert.False(t, ok, "caller is not mutated")
			}
		})
	}
}

func TestCompareRemovedCaller(t *testing.T) {
	t.Parallel()

	got, err := resolvePre(KindCompare, directive("compare", arg("value", 1), arg("eq", 1)), nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	var notFound *ResolverNotFoundError
	_, err = resolvePre(KindCompare, directive("compare", arg("value", 1), arg("like", 1)), nil)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "like", notFound.Key)
}
