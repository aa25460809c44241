package progressive

import (
	"iter"
	"slices"
	"strconv"
)

// Walk returns a lazy iterator over every terminal value reachable through
// expr, paired with the concrete keys used to reach it. Plain keys descend
// into one member, any bracket step visits every array element, and `:name`
// steps visit every mapping key in sorted order. Missing branches are skipped.
func Walk(root any, expr string) (iter.Seq2[[]string, any], error) {
	path, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	seq := iter.Seq2[[]string, any](func(yield func([]string, any) bool) {
		walk(root, path, make([]string, 0, len(path)), yield)
	})

	return seq, nil
}

func walk(node any, path Path, keys []string, yield func([]string, any) bool) bool {
	if len(path) == 0 {
		return yield(slices.Clone(keys), node)
	}
	if node == nil {
		return true
	}

	step, rest := path[0], path[1:]

	switch step.Kind {
	case StepWildcard:
		m, ok := node.(map[string]any)
		if !ok {
			return true
		}
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if !walk(m[name], rest, append(keys, name), yield) {
				return false
			}
		}
		return true
	case StepAppend, StepIndex, StepPredicate:
		arr, ok := node.([]any)
		if !ok && step.Kind == StepPredicate {
			if m, isMap := node.(map[string]any); isMap {
				arr, ok = m[step.Name].([]any)
				keys = append(keys, step.Name)
			}
		}
		if !ok {
			return true
		}
		for i, element := range arr {
			if !walk(element, rest, append(keys, strconv.Itoa(i)), yield) {
				return false
			}
		}
		return true
	default:
		m, ok := node.(map[string]any)
		if !ok {
			return true
		}
		child, ok := m[step.Name]
		if !ok {
			return true
		}
		return walk(child, rest, append(keys, step.Name), yield)
	}
}
