package directive

import (
	"slices"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/number"
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
)

// indexed rescales values by the maximum observed across a set of member
// queries: the owner plus `to`, or every query carrying an indexed directive
// of the same `group`.
type indexed struct {
	base
	to    string
	group string

	members []string
	paths   map[string][]string
	grouped bool

	max    float64
	hasMax bool
}

func newIndexed(b base, args ast.Arguments) (*indexed, error) {
	to, _ := args.String("to")
	group, _ := args.String("group")
	switch {
	case to == "" && group == "":
		return nil, argumentError(b.kind, "requires `to` or `group`")
	case to != "" && group != "":
		return nil, argumentError(b.kind, "accepts only one of `to` and `group`")
	}

	d := &indexed{base: b, to: to, group: group, paths: make(map[string][]string)}
	d.addMember(b.query.Name, b.path)
	if to != "" {
		d.addMember(to, b.path)
	}
	return d, nil
}

func (d *indexed) addMember(name, path string) {
	if !slices.Contains(d.members, name) {
		d.members = append(d.members, name)
	}
	if !slices.Contains(d.paths[name], path) {
		d.paths[name] = append(d.paths[name], path)
	}
}

// collect gathers the group members once, on first use, since sibling
// queries register after this directive was compiled.
func (d *indexed) collect(batches query.Batches) {
	for _, q := range batches.All() {
		for _, t := range q.Directives {
			other, ok := t.(*indexed)
			if ok && other.group == d.group {
				d.addMember(q.Name, other.path)
			}
		}
	}
	d.grouped = true
}

func (d *indexed) measure(in query.TransformInput) error {
	origin, ok := in.Origin.(map[string]any)
	if !ok {
		return &ConfigurationMissingError{Directive: d.kind, Subject: "a batched origin"}
	}

	var (
		peak  float64
		found bool
	)
	for _, member := range d.members {
		tree, ok := origin[member]
		if !ok {
			return &ConfigurationMissingError{Directive: d.kind, Subject: "query " + member}
		}

		for _, path := range d.paths[member] {
			values, err := progressive.Walk(tree, path)
			if err != nil {
				return err
			}
			for _, v := range values {
				if f, ok := number.ToFloat64(v); ok {
					peak = max(peak, f)
					found = true
				}
			}
		}
	}

	d.max, d.hasMax = peak, found
	return nil
}

func (d *indexed) Transform(in query.TransformInput) (query.TransformOutput, error) {
	if d.group != "" && !d.grouped {
		d.collect(in.Batches)
	}

	out := query.TransformOutput{}.WithValue(in.Value)
	if !d.hasMax && in.Origin != nil {
		if err := d.measure(in); err != nil {
			return query.TransformOutput{}, err
		}
	}
	if !d.hasMax {
		return out, nil
	}

	value, ok := number.ToFloat64(in.Value)
	if !ok || d.max == 0 {
		return out.WithValue(nil), nil
	}
	return out.WithValue(value / d.max), nil
}
