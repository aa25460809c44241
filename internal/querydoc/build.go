package querydoc

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"

	"github.com/jacoelho/resultshape/internal/directive"
	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
)

// Metric is one emitted metric of a plan.
type Metric struct {
	Key string
	// Path is the metric's emission path template.
	Path string
}

// Plan is a built query together with the layout the driver emits it in.
type Plan struct {
	Query *query.Query
	// Container is the path template of a row's container.
	Container  string
	Dimensions []string
	Metrics    []Metric
}

// Build is the outcome of building a document.
type Build struct {
	Batches query.Batches
	Plans   []*Plan
}

// Build resolves every field's directives. Dimensions removed by a
// pre-executed directive do not take part in the container path; removed
// metrics are not emitted.
func (d *Document) Build(logger log.Logger) (*Build, error) {
	build := &Build{Batches: make(query.Batches, len(d.Queries))}

	for _, spec := range d.Queries {
		plan, err := spec.build(logger)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", spec.Name, err)
		}

		batch := spec.Batch
		if batch == "" {
			batch = query.BatchPrefix + spec.Name
		}
		build.Batches[batch] = append(build.Batches[batch], plan.Query)
		build.Plans = append(build.Plans, plan)
	}

	return build, nil
}

func (s QuerySpec) build(logger log.Logger) (*Plan, error) {
	q := query.New(s.Name)
	q.Alias = s.Alias
	plan := &Plan{Query: q}

	for _, field := range s.Dimensions {
		kept, err := directive.Parse(field, nil, directive.Options{On: directive.OnDimension, Logger: logger})
		if err != nil {
			return nil, err
		}
		if kept != nil {
			plan.Dimensions = append(plan.Dimensions, kept.Key())
		}
	}

	plan.Container = containerPath(plan.Dimensions)
	q.Path = plan.Container

	for _, field := range s.Dimensions {
		if _, err := directive.Parse(field, q, directive.Options{
			On:     directive.OnDimension,
			Path:   plan.Container,
			Logger: logger,
		}); err != nil {
			return nil, err
		}
	}

	for _, field := range s.Metrics {
		path := progressive.Child(plan.Container, field.Key())
		kept, err := directive.Parse(field, q, directive.Options{
			On:     directive.OnMetric,
			Path:   path,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		if kept == nil {
			continue
		}
		q.Metrics = append(q.Metrics, field.Key())
		plan.Metrics = append(plan.Metrics, Metric{Key: field.Key(), Path: path})
	}

	return plan, nil
}

// containerPath nests one predicate step per dimension, each keyed by the
// row's own value of that dimension.
func containerPath(dimensions []string) string {
	steps := make([]string, 0, len(dimensions))
	for _, dim := range dimensions {
		name := progressive.Shield(dim)
		steps = append(steps, "[@"+name+"=:"+name+"]")
	}
	return strings.Join(steps, ".")
}
