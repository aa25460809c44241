package query

// TransformInput is what the driver hands a Transformer for one emission.
type TransformInput struct {
	Row RowID
	// Path is the current emission path.
	Path string
	// ReplacedPath is Path with the row's variables substituted.
	ReplacedPath string
	// GlobalReplacedPath addresses the row's container.
	GlobalReplacedPath string
	// Data holds the row's source fields.
	Data  map[string]any
	Value any
	// Key is the leaf property name.
	Key string
	// Origin is the materialized result tree, nil until it is available.
	Origin  any
	Batches Batches
	// Result is the output tree under construction.
	Result any
	Query  *Query
}

// TransformOutput is a Transformer's verdict. Zero fields leave the emission
// as it was.
type TransformOutput struct {
	Value    any
	HasValue bool
	Path     string
	// Replacers are written into the container of the emission path.
	Replacers map[string]any
	Skip      bool
	// SkipAll stops processing the row altogether.
	SkipAll bool
}

// WithValue returns a copy of o replacing the emitted value.
func (o TransformOutput) WithValue(v any) TransformOutput {
	o.Value = v
	o.HasValue = true
	return o
}

// Own selects the query's portion of origin. Queries are keyed by name once
// there is more than one batch or the query is named.
func (in TransformInput) Own(q *Query) any {
	if in.Origin == nil || q == nil {
		return in.Origin
	}
	if len(in.Batches) > 1 || q.Name != "" {
		m, ok := in.Origin.(map[string]any)
		if !ok {
			return nil
		}
		return m[q.Name]
	}
	return in.Origin
}

// Of selects the portion of origin belonging to the query called name.
func (in TransformInput) Of(name string) any {
	m, ok := in.Origin.(map[string]any)
	if !ok {
		return nil
	}
	return m[name]
}
