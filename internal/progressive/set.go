package progressive

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jacoelho/resultshape/internal/number"
	"github.com/jacoelho/resultshape/internal/stack"
)

type absent struct{}

// Absent is the value that deletes the addressed property.
var Absent any = absent{}

// frame is one visited container on the write path.
type frame struct {
	node     any
	identity *Step // predicate used to reach node, if any
	assign   func(any)
	remove   func()
}

// Set writes value at expr, creating intermediate containers where members
// are absent or null, and returns the root, which is replaced when a nil or
// empty root is written through a leading bracket step. Any other scalar in
// the way is an ErrShape. Writing Absent deletes.
func Set(root any, expr string, value any, hash HashContext) (any, error) {
	return write(root, expr, value, false, hash)
}

// Accumulate adds value to a numeric value already present at expr and
// otherwise behaves like Set.
func Accumulate(root any, expr string, value any, hash HashContext) (any, error) {
	return write(root, expr, value, true, hash)
}

// Delete removes the property at expr and prunes every container on the way
// that became empty. A path that leaves the tree returns root unchanged.
func Delete(root any, expr string, hash HashContext) (any, error) {
	return write(root, expr, Absent, false, hash)
}

func write(root any, expr string, value any, sum bool, hash HashContext) (any, error) {
	path, err := Parse(expr)
	if err != nil {
		return root, err
	}
	if len(path) == 0 {
		return root, fmt.Errorf("%w: cannot write the root", ErrSyntax)
	}

	deleting := value == Absent
	if deleting {
		if !isContainer(root) {
			return root, nil
		}
	} else {
		root = seedRoot(root, path[0])
	}

	w := &writer{
		path:     path,
		hash:     hash,
		deleting: deleting,
		frames:   stack.NewWithCapacity[*frame](len(path)),
	}

	top := &frame{node: root}
	top.assign = func(v any) {
		root = v
		top.node = v
	}
	w.frames.Push(top)

	for i, step := range path[:len(path)-1] {
		if err := w.descend(i, step); err != nil {
			if errors.Is(err, errMissing) {
				return root, nil
			}
			return root, fmt.Errorf("%w: step %d of %q", err, i+1, expr)
		}
	}

	if err := w.assign(path[len(path)-1], value, sum); err != nil {
		if errors.Is(err, errMissing) {
			return root, nil
		}
		return root, fmt.Errorf("%w: property of %q", err, expr)
	}

	if deleting {
		w.prune()
	}

	return root, nil
}

func seedRoot(root any, first Step) any {
	if root == nil {
		if first.bracket() {
			return []any{}
		}
		return map[string]any{}
	}
	if m, ok := root.(map[string]any); ok && len(m) == 0 && first.bracket() {
		return []any{}
	}
	return root
}

type writer struct {
	path Path
	hash HashContext
	// deleting writers never create containers; a missing step ends the
	// write with errMissing.
	deleting bool
	frames   *stack.Stack[*frame]
}

// errMissing stops a delete whose path leaves the tree.
var errMissing = errors.New("progressive: path not present")

func (w *writer) top() *frame {
	f, _ := w.frames.Peek()
	return f
}

func (w *writer) descend(i int, step Step) error {
	current := w.top()

	switch node := current.node.(type) {
	case []any:
		return w.descendSequence(current, node, step)
	case map[string]any:
		switch step.Kind {
		case StepKey, StepWildcard:
			child := node[step.Name]
			if !isContainer(child) {
				if err := w.creatable(child, step); err != nil {
					return err
				}
				if w.path[i+1].bracket() {
					child = []any{}
				} else {
					child = map[string]any{}
				}
				node[step.Name] = child
			}
			w.frames.Push(memberFrame(node, step.Name, child))
			return nil
		case StepPredicate:
			child, ok := node[step.Name].([]any)
			if !ok {
				if err := w.creatable(node[step.Name], step); err != nil {
					return err
				}
				child = []any{}
				node[step.Name] = child
			}
			member := memberFrame(node, step.Name, child)
			w.frames.Push(member)
			return w.descendSequence(member, child, step)
		default:
			return fmt.Errorf("%w: %s on a mapping", ErrShape, step)
		}
	default:
		return fmt.Errorf("%w: cannot descend into %T", ErrShape, current.node)
	}
}

// creatable checks that a missing container may be created in place of
// existing. Only absent or null members are replaced.
func (w *writer) creatable(existing any, step Step) error {
	if w.deleting {
		return errMissing
	}
	if existing != nil {
		return fmt.Errorf("%w: %s holds a %T", ErrShape, step, existing)
	}
	return nil
}

func (w *writer) descendSequence(parent *frame, arr []any, step Step) error {
	switch step.Kind {
	case StepAppend:
		if w.deleting {
			return errMissing
		}
		arr = append(arr, map[string]any{})
		parent.assign(arr)
		w.frames.Push(w.elementFrame(parent, len(arr)-1, nil))
		return nil
	case StepIndex:
		if step.Index >= len(arr) {
			if w.deleting {
				return errMissing
			}
			return fmt.Errorf("%w: index %d out of range [0,%d)", ErrShape, step.Index, len(arr))
		}
		if !isContainer(arr[step.Index]) {
			if err := w.creatable(arr[step.Index], step); err != nil {
				return err
			}
			arr[step.Index] = map[string]any{}
		}
		w.frames.Push(w.elementFrame(parent, step.Index, nil))
		return nil
	case StepPredicate:
		index, ok := find(arr, step.Name, step.Value, w.hash)
		if !ok {
			if w.deleting {
				return errMissing
			}
			arr = append(arr, map[string]any{step.Name: step.Value})
			parent.assign(arr)
			index = len(arr) - 1
			w.hash.Store(step.Name, step.Value, index)
		}
		identity := step
		w.frames.Push(w.elementFrame(parent, index, &identity))
		return nil
	default:
		return fmt.Errorf("%w: %s on a sequence", ErrShape, step)
	}
}

func memberFrame(parent map[string]any, key string, child any) *frame {
	f := &frame{node: child}
	f.assign = func(v any) {
		parent[key] = v
		f.node = v
	}
	f.remove = func() {
		delete(parent, key)
	}
	return f
}

func (w *writer) elementFrame(parent *frame, index int, identity *Step) *frame {
	f := &frame{node: parent.node.([]any)[index], identity: identity}
	f.assign = func(v any) {
		parent.node.([]any)[index] = v
		f.node = v
	}
	f.remove = func() {
		arr := parent.node.([]any)
		parent.assign(slices.Delete(arr, index, index+1))
		if identity != nil {
			w.hash.Evict(identity.Name, identity.Value)
		}
	}
	return f
}

func (w *writer) assign(property Step, value any, sum bool) error {
	current := w.top()

	switch node := current.node.(type) {
	case map[string]any:
		if property.Kind != StepKey && property.Kind != StepWildcard {
			return fmt.Errorf("%w: %s on a mapping", ErrShape, property)
		}
		if value == Absent {
			if _, ok := node[property.Name]; !ok {
				return errMissing
			}
			delete(node, property.Name)
			return nil
		}
		if sum {
			if total, ok := number.Add(node[property.Name], value); ok {
				node[property.Name] = total
				return nil
			}
		}
		node[property.Name] = value
		return nil
	case []any:
		switch property.Kind {
		case StepAppend:
			if value == Absent {
				return errMissing
			}
			current.assign(append(node, value))
			return nil
		case StepIndex:
			if property.Index >= len(node) {
				if value == Absent {
					return errMissing
				}
				return fmt.Errorf("%w: index %d out of range [0,%d)", ErrShape, property.Index, len(node))
			}
			if value == Absent {
				current.assign(slices.Delete(node, property.Index, property.Index+1))
				return nil
			}
			if sum {
				if total, ok := number.Add(node[property.Index], value); ok {
					node[property.Index] = total
					return nil
				}
			}
			node[property.Index] = value
			return nil
		default:
			return fmt.Errorf("%w: %s on a sequence", ErrShape, property)
		}
	default:
		return fmt.Errorf("%w: cannot assign into %T", ErrShape, current.node)
	}
}

// prune unwinds the visited chain, removing each container that became empty
// and stopping at the first one that still holds data. The root stays.
func (w *writer) prune() {
	for w.frames.Size() > 1 {
		f, _ := w.frames.Pop()
		if !isEmpty(f.node, f.identity) {
			return
		}
		f.remove()
	}
}

// isEmpty reports whether v carries no data. A mapping reached through a
// predicate ignores the identity member the predicate seeded.
func isEmpty(v any, identity *Step) bool {
	switch node := v.(type) {
	case nil, absent:
		return true
	case map[string]any:
		for key, member := range node {
			if identity != nil && key == identity.Name && member != nil && number.Format(member) == identity.Value {
				continue
			}
			if !isEmpty(member, nil) {
				return false
			}
		}
		return true
	case []any:
		for _, element := range node {
			if !isEmpty(element, nil) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
