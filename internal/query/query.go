// Package query holds the query descriptors compiled directives attach to and
// the calling contract between the execution driver and those directives.
package query

import (
	"slices"

	"github.com/jacoelho/resultshape/internal/progressive"
)

// RowID identifies an emitted row within one execution.
type RowID uint32

// Query is the caller-owned descriptor of one query in a batch.
type Query struct {
	Name  string
	Alias string
	// Path is the emission path template of the query's rows.
	Path string
	// Metrics lists the metric keys the query emits.
	Metrics []string
	// Directives only ever grows.
	Directives []Transformer
	// Hash caches predicate lookups into this query's part of the origin.
	Hash progressive.HashContext
}

func New(name string) *Query {
	return &Query{Name: name, Hash: progressive.NewHashContext()}
}

// AddDirective registers a compiled directive.
func (q *Query) AddDirective(t Transformer) {
	q.Directives = append(q.Directives, t)
}

// Transformer is a compiled post-executed directive. It is invoked once per
// emitted value and owns its accumulated state; it is not safe for
// concurrent use.
type Transformer interface {
	Kind() string
	// Path is the emission path the directive was registered for.
	Path() string
	Transform(in TransformInput) (TransformOutput, error)
}

// Batch is a group of sibling queries executed in one round.
type Batch []*Query

// Batches maps batch names to their queries.
type Batches map[string]Batch

// BatchPrefix names the batch a query lands in when it was not declared in
// a named batch of its own.
const BatchPrefix = "___query"

// Find returns the query called name, searching the batch of that name and
// then its implicit fallback batch.
func (b Batches) Find(name string) (*Query, bool) {
	for _, key := range []string{name, BatchPrefix + name} {
		for _, q := range b[key] {
			if q != nil && q.Name == name {
				return q, true
			}
		}
	}
	return nil, false
}

// HashContext returns the hash context of the query called name. An unknown
// query gets a fresh, unshared context.
func (b Batches) HashContext(name string) progressive.HashContext {
	if q, ok := b.Find(name); ok && q.Hash != nil {
		return q.Hash
	}
	return progressive.NewHashContext()
}

// All yields every query across batches in batch-name order.
func (b Batches) All() []*Query {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []*Query
	for _, name := range names {
		for _, q := range b[name] {
			if q != nil {
				out = append(out, q)
			}
		}
	}
	return out
}
