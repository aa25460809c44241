// Package directive resolves the directives annotating metrics and
// dimensions.
//
// Pre-executed directives (include, skip, compare) decide at build time
// whether a field takes part in the query. Post-executed directives (omit,
// diff, subtract, indexed, filter, groupOn, groupBy, divide) compile into a
// query.Transformer that the execution driver invokes once per emitted value.
// Each compiled directive is a struct owning its accumulated state.
package directive

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/query"
)

// Options configure Parse.
type Options struct {
	On On
	// Path overrides the query path compiled directives register for.
	Path   string
	Logger log.Logger
}

func (o Options) logger() log.Logger {
	if o.Logger == nil {
		return log.NewNopLogger()
	}
	return o.Logger
}

// Parse folds node's directives in declared order. Pre-executed directives
// run eagerly; post-executed ones are compiled and appended to q when q is
// not nil. A nil node result means the field is excluded from the query.
// Any error aborts the whole chain and leaves q untouched.
func Parse(node *ast.Node, q *query.Query, opts Options) (*ast.Node, error) {
	if node == nil {
		return nil, nil
	}

	logger := log.With(opts.logger(), "field", node.Key(), "on", opts.On)
	path := opts.Path
	if q != nil {
		logger = log.With(logger, "query", q.Name)
		if path == "" {
			path = q.Path
		}
	}

	var compiled []query.Transformer
	current := node
	for _, d := range node.Directives {
		kind := Kind(d.Name)

		switch {
		case kind.PreExecuted():
			next, err := resolvePre(kind, d, current)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", node.Key(), err)
			}
			if next == nil && current != nil {
				level.Debug(logger).Log("msg", "field removed", "directive", kind)
			}
			current = next
		case kind.PostExecuted():
			if q == nil {
				continue
			}
			caller := current
			if caller == nil {
				caller = node
			}
			t, err := compile(kind, d, caller, q, opts.On, path)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", node.Key(), err)
			}
			compiled = append(compiled, t)
		default:
			level.Debug(logger).Log("msg", "directive ignored", "directive", d.Name)
		}
	}

	for _, t := range compiled {
		q.AddDirective(t)
		level.Debug(logger).Log("msg", "directive registered", "directive", t.Kind(), "path", t.Path())
	}

	return current, nil
}

// base is the context every compiled directive carries.
type base struct {
	kind Kind
	on   On
	path string
	// name is the key of the annotated field.
	name  string
	query *query.Query
}

func (b *base) Kind() string { return string(b.kind) }

func (b *base) Path() string { return b.path }

func compile(kind Kind, d ast.Directive, caller *ast.Node, q *query.Query, on On, path string) (query.Transformer, error) {
	b := base{kind: kind, on: on, path: path, name: caller.Key(), query: q}

	switch kind {
	case KindOmit:
		return newOmit(b, d.Arguments)
	case KindDiff, KindSubtract:
		return newDifference(b, d.Arguments)
	case KindIndexed:
		return newIndexed(b, d.Arguments)
	case KindFilter:
		return newFilter(b, d.Arguments)
	case KindGroupOn:
		return newGroupOn(b, d.Arguments)
	case KindGroupBy:
		return newGroupBy(b, d.Arguments)
	case KindDivide:
		return newDivide(b, d.Arguments)
	default:
		return nil, fmt.Errorf("%w: @%s does not compile", ErrArgument, kind)
	}
}
