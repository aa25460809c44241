package progressive

import (
	"strconv"
	"strings"
)

const (
	// StepKey addresses a mapping member.
	StepKey StepKind = iota
	// StepAppend is `[]`.
	StepAppend
	// StepIndex is `[N]`.
	StepIndex
	// StepPredicate is `[@field=value]`.
	StepPredicate
	// StepWildcard is `:name`.
	StepWildcard
)

// StepKind identifies the form of a path step.
type StepKind uint8

// Step is one parsed path segment.
type Step struct {
	Kind  StepKind
	Name  string // member name, wildcard name or predicate field
	Value string // predicate value
	Index int    // array position for StepIndex
}

// Path is a parsed path expression. The last step is the property being
// read or written; the preceding steps are its containers.
type Path []Step

func (s Step) bracket() bool {
	return s.Kind == StepAppend || s.Kind == StepIndex || s.Kind == StepPredicate
}

// String renders the step back into expression form, shielding dots.
func (s Step) String() string {
	switch s.Kind {
	case StepAppend:
		return "[]"
	case StepIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case StepPredicate:
		return "[@" + Shield(s.Name) + "=" + Shield(s.Value) + "]"
	case StepWildcard:
		return ":" + Shield(s.Name)
	default:
		return Shield(s.Name)
	}
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = step.String()
	}
	return strings.Join(parts, ".")
}

// HashContext caches predicate lookups: field -> value -> array index.
// A nil HashContext disables caching. An entry is only trusted after the
// element at the cached index is confirmed to still carry the predicate, so a
// stale entry costs a rescan, never a wrong answer.
type HashContext map[string]map[string]int

func NewHashContext() HashContext {
	return HashContext{}
}

// Lookup returns the cached index for field=value.
func (h HashContext) Lookup(field, value string) (int, bool) {
	if h == nil {
		return 0, false
	}
	index, ok := h[field][value]
	return index, ok
}

// Store records the index of the element carrying field=value.
func (h HashContext) Store(field, value string, index int) {
	if h == nil {
		return
	}
	values, ok := h[field]
	if !ok {
		values = make(map[string]int)
		h[field] = values
	}
	values[value] = index
}

// Evict drops the entry for field=value. Callers removing array elements
// outside this package must evict the matching entries themselves.
func (h HashContext) Evict(field, value string) {
	if h == nil {
		return
	}
	delete(h[field], value)
}
