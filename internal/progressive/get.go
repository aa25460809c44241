package progressive

import "github.com/jacoelho/resultshape/internal/number"

// scanIndex is the uncached predicate scan. Tests swap it to count rescans.
var scanIndex = func(arr []any, field, value string) int {
	for i, element := range arr {
		if carries(element, field, value) {
			return i
		}
	}
	return -1
}

// Get evaluates expr against root. The boolean is false when any step misses,
// including reads through a missing intermediate container and malformed
// expressions; callers test it instead of handling an error.
func Get(root any, expr string, hash HashContext) (any, bool) {
	path, err := Parse(expr)
	if err != nil {
		return nil, false
	}
	return path.Get(root, hash)
}

// Get evaluates the compiled path against root.
func (p Path) Get(root any, hash HashContext) (any, bool) {
	current := root
	for _, step := range p {
		if current == nil {
			return nil, false
		}

		next, ok := step.read(current, hash)
		if !ok {
			return nil, false
		}
		current = next
	}

	return current, true
}

func (s Step) read(current any, hash HashContext) (any, bool) {
	switch s.Kind {
	case StepPredicate:
		return s.readPredicate(current, hash)
	case StepIndex:
		arr, ok := current.([]any)
		if !ok || s.Index >= len(arr) {
			return nil, false
		}
		return arr[s.Index], true
	case StepAppend:
		return nil, false
	default:
		return s.readKey(current)
	}
}

func (s Step) readPredicate(current any, hash HashContext) (any, bool) {
	switch node := current.(type) {
	case []any:
		index, ok := find(node, s.Name, s.Value, hash)
		if !ok {
			return nil, false
		}
		return node[index], true
	case map[string]any:
		if arr, ok := node[s.Name].([]any); ok {
			index, ok := find(arr, s.Name, s.Value, hash)
			if !ok {
				return nil, false
			}
			return arr[index], true
		}
		value, ok := node[s.String()]
		return value, ok
	default:
		return nil, false
	}
}

func (s Step) readKey(current any) (any, bool) {
	switch node := current.(type) {
	case map[string]any:
		value, ok := node[s.Name]
		return value, ok
	case []any:
		// Weak, order-dependent match: the first element holding the step
		// literal among its own values.
		for _, element := range node {
			if holdsLiteral(element, s.Name) {
				return element, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func holdsLiteral(element any, literal string) bool {
	switch node := element.(type) {
	case map[string]any:
		for _, value := range node {
			if s, ok := value.(string); ok && s == literal {
				return true
			}
		}
	case []any:
		for _, value := range node {
			if s, ok := value.(string); ok && s == literal {
				return true
			}
		}
	}
	return false
}

// find locates the element carrying field=value, consulting hash first and
// recording the index of a scanned hit.
func find(arr []any, field, value string, hash HashContext) (int, bool) {
	if index, ok := hash.Lookup(field, value); ok && index < len(arr) && carries(arr[index], field, value) {
		return index, true
	}

	index := scanIndex(arr, field, value)
	if index < 0 {
		return -1, false
	}

	hash.Store(field, value, index)
	return index, true
}

func carries(element any, field, value string) bool {
	node, ok := element.(map[string]any)
	if !ok {
		return false
	}
	member, ok := node[field]
	if !ok || member == nil {
		return false
	}
	return number.Format(member) == value
}
