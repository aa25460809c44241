// Package execute runs built queries over result rows and shapes them into
// trees.
//
// A run makes two passes. The first materializes the origin: every query's
// rows written raw into their containers, keyed by query name. The second
// walks the rows again, feeding every emitted metric through the directives
// registered for its path or its container, and writes what they return into
// the shaped result.
package execute

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/jacoelho/resultshape/internal/progressive"
	"github.com/jacoelho/resultshape/internal/query"
	"github.com/jacoelho/resultshape/internal/querydoc"
	"github.com/jacoelho/resultshape/internal/results"
)

// ErrRows is the sentinel error for rows that cannot be placed.
var ErrRows = errors.New("rows error")

// Rows holds each query's result rows by query name.
type Rows map[string][]map[string]any

// Runner executes a built query document.
type Runner struct {
	build  *querydoc.Build
	logger log.Logger
}

// New creates a Runner for build. A nil logger discards.
func New(build *querydoc.Build, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Runner{build: build, logger: logger}
}

// Run shapes rows and returns the result keyed by query alias, or name when
// the query has none.
func (r *Runner) Run(ctx context.Context, rows Rows) (map[string]any, *results.Summary, error) {
	runID := uuid.NewString()
	logger := log.With(r.logger, "run", runID)
	start := time.Now()

	if err := r.check(rows); err != nil {
		return nil, nil, err
	}

	level.Debug(logger).Log("msg", "run started", "queries", len(r.build.Plans))

	origin, err := r.materialize(ctx, rows)
	if err != nil {
		return nil, nil, err
	}

	shaped := make(map[string]any, len(r.build.Plans))
	summary := results.NewSummary(runID, len(r.build.Plans))

	for _, plan := range r.build.Plans {
		stats := results.NewQueryResultBuilder(plan.Query.Name)
		queryStart := time.Now()

		tree, err := r.shape(ctx, plan, rows[plan.Query.Name], origin, stats)
		if err != nil {
			return nil, nil, fmt.Errorf("query %s: %w", plan.Query.Name, err)
		}

		key := plan.Query.Alias
		if key == "" {
			key = plan.Query.Name
		}
		shaped[key] = tree

		summary.Add(stats.WithDuration(time.Since(queryStart)))
	}

	summary.SetTotalDuration(time.Since(start))
	level.Info(logger).Log("msg", "run finished", "rows", summary.Rows, "emitted", summary.Emitted,
		"dropped", summary.Dropped, "duration", summary.TotalDuration)

	return shaped, summary, nil
}

// check rejects rows for unknown queries and rows missing a dimension.
func (r *Runner) check(rows Rows) error {
	known := make(map[string]*querydoc.Plan, len(r.build.Plans))
	for _, plan := range r.build.Plans {
		known[plan.Query.Name] = plan
	}

	names := slices.Sorted(maps.Keys(rows))
	for _, name := range names {
		plan, ok := known[name]
		if !ok {
			return fmt.Errorf("%w: rows for unknown query %q", ErrRows, name)
		}
		for i, row := range rows[name] {
			for _, dim := range plan.Dimensions {
				if v, ok := row[dim]; !ok || v == nil {
					return fmt.Errorf("%w: query %s row %d: missing dimension %q", ErrRows, name, i, dim)
				}
			}
		}
	}

	return nil
}

// materialize builds the origin tree. Every query has a key, even when it
// has no rows.
func (r *Runner) materialize(ctx context.Context, rows Rows) (map[string]any, error) {
	origin := make(map[string]any, len(r.build.Plans))

	for _, plan := range r.build.Plans {
		q := plan.Query

		var tree any
		for i, row := range rows[q.Name] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			var err error
			tree, err = writeDimensions(tree, plan, row, q.Hash)
			if err != nil {
				return nil, fmt.Errorf("query %s row %d: %w", q.Name, i, err)
			}

			for _, metric := range plan.Metrics {
				value, ok := row[metric.Key]
				if !ok {
					continue
				}
				tree, err = progressive.Set(tree, progressive.ReplaceVars(metric.Path, row), value, q.Hash)
				if err != nil {
					return nil, fmt.Errorf("query %s row %d: %w", q.Name, i, err)
				}
			}
		}

		origin[q.Name] = tree
	}

	return origin, nil
}

// shape runs the second pass for one query.
func (r *Runner) shape(ctx context.Context, plan *querydoc.Plan, rows []map[string]any, origin map[string]any, stats *results.QueryResultBuilder) (any, error) {
	q := plan.Query
	hash := progressive.NewHashContext()
	transformers := registered(plan)

	var result any

rows:
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.AddRow()

		global := progressive.ReplaceVars(plan.Container, row)

		for _, metric := range plan.Metrics {
			value, ok := row[metric.Key]
			if !ok {
				continue
			}

			replaced := progressive.ReplaceVars(metric.Path, row)
			in := query.TransformInput{
				Row:                query.RowID(i),
				Path:               metric.Path,
				ReplacedPath:       replaced,
				GlobalReplacedPath: global,
				Data:               row,
				Value:              value,
				Key:                metric.Key,
				Origin:             origin,
				Batches:            r.build.Batches,
				Result:             result,
				Query:              q,
			}

			target := replaced
			skip := false
			for _, t := range transformers[metric.Key] {
				out, err := t.Transform(in)
				if err != nil {
					return nil, fmt.Errorf("row %d %s: %w", i, metric.Key, err)
				}

				if out.HasValue {
					in.Value = out.Value
				}
				if out.Path != "" {
					in.Path = out.Path
					target = out.Path
				}
				if len(out.Replacers) > 0 {
					result, err = replace(result, target, out.Replacers, hash)
					if err != nil {
						return nil, fmt.Errorf("row %d %s: %w", i, metric.Key, err)
					}
					in.Result = result
				}
				if out.SkipAll {
					stats.AddDropped()
					continue rows
				}
				skip = skip || out.Skip
			}

			if skip {
				stats.AddSkipped()
				continue
			}

			var err error
			result, err = progressive.Set(result, target, in.Value, hash)
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", i, metric.Key, err)
			}
			if target == replaced {
				result, err = writeDimensions(result, plan, row, hash)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
			}
			stats.AddEmitted()
		}
	}

	return result, nil
}

// registered lists, per metric, the directives registered for the metric's
// path or the query container, in registration order.
func registered(plan *querydoc.Plan) map[string][]query.Transformer {
	out := make(map[string][]query.Transformer, len(plan.Metrics))
	for _, metric := range plan.Metrics {
		for _, t := range plan.Query.Directives {
			if t.Path() == metric.Path || t.Path() == plan.Container {
				out[metric.Key] = append(out[metric.Key], t)
			}
		}
	}
	return out
}

// replace writes replacers next to the emission at path.
func replace(result any, path string, replacers map[string]any, hash progressive.HashContext) (any, error) {
	parent := progressive.Parent(path)
	for _, key := range slices.Sorted(maps.Keys(replacers)) {
		var err error
		result, err = progressive.Set(result, progressive.Child(parent, key), replacers[key], hash)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// writeDimensions stores a row's dimension values, typed as in the row, on
// the level of the container each one identifies.
func writeDimensions(tree any, plan *querydoc.Plan, row map[string]any, hash progressive.HashContext) (any, error) {
	prefix := ""
	for _, dim := range plan.Dimensions {
		name := progressive.Shield(dim)
		step := progressive.ReplaceVars("[@"+name+"=:"+name+"]", row)
		if prefix == "" {
			prefix = step
		} else {
			prefix += "." + step
		}

		var err error
		tree, err = progressive.Set(tree, progressive.Child(prefix, dim), row[dim], hash)
		if err != nil {
			return tree, err
		}
	}
	return tree, nil
}
