// Package ast is the directive-annotated field tree consumed by the directive
// pipeline.
package ast

import "slices"

// Node is one metric or dimension declaration.
type Node struct {
	Name       string
	Alias      string
	Arguments  Arguments
	Directives []Directive

	value    any
	resolved bool
}

// Key is the name the node is emitted under: its alias when set.
func (n *Node) Key() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// Resolved returns the value a previous directive attached to the node.
func (n *Node) Resolved() (any, bool) {
	if n == nil {
		return nil, false
	}
	return n.value, n.resolved
}

// WithValue returns a shallow copy of n carrying v as its resolved value.
func (n *Node) WithValue(v any) *Node {
	cp := *n
	cp.value = v
	cp.resolved = true
	return &cp
}

// Directive is an `@name(args)` annotation.
type Directive struct {
	Name      string
	Arguments Arguments
}

// Argument is a named directive or field argument.
type Argument struct {
	Name  string
	Value any
}

// Arguments keeps declaration order, which the compare directive folds over.
type Arguments []Argument

func (a Arguments) Get(name string) (any, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// String returns the named argument when it is a non-empty string.
func (a Arguments) String(name string) (string, bool) {
	v, ok := a.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Without returns the arguments not named in names.
func (a Arguments) Without(names ...string) Arguments {
	out := make(Arguments, 0, len(a))
	for _, arg := range a {
		if !slices.Contains(names, arg.Name) {
			out = append(out, arg)
		}
	}
	return out
}
