package directive

import (
	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/resolver"
)

const (
	argIf    = "if"
	argValue = "value"
)

// resolvePre evaluates a pre-executed directive against caller. A nil node
// means the field is removed; a nil caller is a field an earlier directive
// already removed.
func resolvePre(kind Kind, d ast.Directive, caller *ast.Node) (*ast.Node, error) {
	switch kind {
	case KindInclude:
		keep, err := condition(kind, d, caller)
		if err != nil || !keep {
			return nil, err
		}
		return caller, nil
	case KindSkip:
		drop, err := condition(kind, d, caller)
		if err != nil || drop {
			return nil, err
		}
		return caller, nil
	case KindCompare:
		return compare(d, caller)
	default:
		return caller, nil
	}
}

// condition prefers a value resolved by an earlier directive over `if`.
func condition(kind Kind, d ast.Directive, caller *ast.Node) (bool, error) {
	if v, ok := caller.Resolved(); ok {
		return resolver.Truthy(v), nil
	}

	v, ok := d.Arguments.Get(argIf)
	if !ok {
		return false, argumentError(kind, "requires `if` or a resolved value")
	}

	return resolver.Truthy(v), nil
}

// compare folds the operator arguments over the subject in order: each one is
// applied to the previous result. Once the running value is false it stays
// false, but later keys are still checked for validity.
func compare(d ast.Directive, caller *ast.Node) (*ast.Node, error) {
	subject, ok := d.Arguments.Get(argValue)
	if !ok || subject == nil {
		subject, ok = caller.Resolved()
	}
	if !ok || subject == nil {
		return nil, argumentError(KindCompare, "requires `value` or a resolved value")
	}

	operators := d.Arguments.Without(argValue)
	if len(operators) == 0 {
		return nil, argumentError(KindCompare, "requires at least one of eq, neq, gt, gte, lt, lte, in")
	}

	var running any = subject
	for _, arg := range operators {
		op, ok := resolver.Lookup(arg.Name)
		if !ok {
			return nil, &ResolverNotFoundError{Directive: KindCompare, Key: arg.Name}
		}
		if running != false {
			running = op.Apply(running, arg.Value)
		}
	}

	if caller == nil {
		return nil, nil
	}

	return caller.WithValue(running), nil
}
