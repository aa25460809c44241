// Package querydoc loads YAML query documents and builds the query
// descriptors the execution driver runs.
//
//	queries:
//	  - name: current
//	    dimensions:
//	      - "day @groupBy(by: month)"
//	    metrics:
//	      - "revenue @diff(by: lastMonth)"
//	  - name: lastMonth
//	    metrics:
//	      - revenue
package querydoc

import (
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
	yamlast "github.com/goccy/go-yaml/ast"

	"github.com/jacoelho/resultshape/internal/ast"
	"github.com/jacoelho/resultshape/internal/parser"
)

// ErrDocument is the sentinel error for malformed query documents.
var ErrDocument = errors.New("query document error")

// Document is a parsed query document.
type Document struct {
	Queries []QuerySpec `yaml:"queries"`
}

// QuerySpec declares one query. Queries without a batch run in a batch of
// their own.
type QuerySpec struct {
	Name       string `yaml:"name"`
	Alias      string `yaml:"alias,omitempty"`
	Batch      string `yaml:"batch,omitempty"`
	Dimensions Fields `yaml:"dimensions,omitempty"`
	Metrics    Fields `yaml:"metrics"`
}

// Fields are field declarations in annotation syntax.
type Fields []*ast.Node

func (f *Fields) UnmarshalYAML(node yamlast.Node) error {
	seq, ok := node.(*yamlast.SequenceNode)
	if !ok {
		return fmt.Errorf("%w: fields must be a sequence", ErrDocument)
	}

	out := make(Fields, 0, len(seq.Values))
	for index, item := range seq.Values {
		str, ok := item.(*yamlast.StringNode)
		if !ok {
			return fmt.Errorf("%w: field at index %d must be a string", ErrDocument, index)
		}

		field, err := parser.ParseField(str.Value)
		if err != nil {
			return fmt.Errorf("%w: field at index %d: %w", ErrDocument, index, err)
		}
		out = append(out, field)
	}

	*f = out
	return nil
}

// Load decodes and validates a query document.
func Load(r io.Reader) (*Document, error) {
	decoder := yaml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %w", ErrDocument, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate checks query names and field declarations.
func (d *Document) Validate() error {
	if len(d.Queries) == 0 {
		return fmt.Errorf("%w: no queries", ErrDocument)
	}

	seen := make(map[string]struct{}, len(d.Queries))
	for i, q := range d.Queries {
		if q.Name == "" {
			return fmt.Errorf("%w: query %d has no name", ErrDocument, i)
		}
		if _, ok := seen[q.Name]; ok {
			return fmt.Errorf("%w: duplicate query %q", ErrDocument, q.Name)
		}
		seen[q.Name] = struct{}{}

		if len(q.Metrics) == 0 {
			return fmt.Errorf("%w: query %q has no metrics", ErrDocument, q.Name)
		}

		keys := make(map[string]struct{}, len(q.Dimensions)+len(q.Metrics))
		for _, field := range append(append(Fields{}, q.Dimensions...), q.Metrics...) {
			if _, ok := keys[field.Key()]; ok {
				return fmt.Errorf("%w: query %q declares %q twice", ErrDocument, q.Name, field.Key())
			}
			keys[field.Key()] = struct{}{}
		}
	}

	return nil
}
