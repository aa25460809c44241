package directive

import (
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
)

// counterpart reads path from the origin of the query called name.
func counterpart(kind Kind, in query.TransformInput, name, path string) (any, bool, error) {
	origin, ok := in.Origin.(map[string]any)
	if !ok {
		return nil, false, &ConfigurationMissingError{Directive: kind, Subject: "a batched origin"}
	}

	tree, ok := origin[name]
	if !ok {
		return nil, false, &ConfigurationMissingError{Directive: kind, Subject: "query " + name}
	}

	v, found := progressive.Get(tree, path, in.Batches.HashContext(name))
	return v, found, nil
}

// container returns the mapping holding the current row in the query's own
// origin.
func (b *base) container(in query.TransformInput) (map[string]any, bool) {
	v, ok := progressive.Get(in.Own(b.query), in.GlobalReplacedPath, b.query.Hash)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
