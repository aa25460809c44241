package results

import (
	"time"
)

// QueryResult counts what one query emitted during a run.
type QueryResult struct {
	Query    string
	Rows     int
	Emitted  int
	Skipped  int
	Dropped  int
	Duration time.Duration
}

type QueryResultBuilder struct {
	query    string
	rows     int
	emitted  int
	skipped  int
	dropped  int
	duration time.Duration
}

func NewQueryResultBuilder(query string) *QueryResultBuilder {
	return &QueryResultBuilder{
		query: query,
	}
}

func (b *QueryResultBuilder) AddRow() *QueryResultBuilder {
	b.rows++
	return b
}

func (b *QueryResultBuilder) AddEmitted() *QueryResultBuilder {
	b.emitted++
	return b
}

func (b *QueryResultBuilder) AddSkipped() *QueryResultBuilder {
	b.skipped++
	return b
}

// AddDropped records a row abandoned by a transformer.
func (b *QueryResultBuilder) AddDropped() *QueryResultBuilder {
	b.dropped++
	return b
}

func (b *QueryResultBuilder) WithDuration(duration time.Duration) *QueryResultBuilder {
	b.duration = duration
	return b
}

func (b *QueryResultBuilder) Build() QueryResult {
	return QueryResult{
		Query:    b.query,
		Rows:     b.rows,
		Emitted:  b.emitted,
		Skipped:  b.skipped,
		Dropped:  b.dropped,
		Duration: b.duration,
	}
}

type Summary struct {
	RunID         string
	QueryResults  []QueryResult
	Rows          int
	Emitted       int
	Skipped       int
	Dropped       int
	TotalDuration time.Duration
}

func NewSummary(runID string, expectedQueries int) *Summary {
	return &Summary{
		RunID:        runID,
		QueryResults: make([]QueryResult, 0, expectedQueries),
	}
}

func (s *Summary) Add(builder *QueryResultBuilder) {
	result := builder.Build()

	s.QueryResults = append(s.QueryResults, result)
	s.Rows += result.Rows
	s.Emitted += result.Emitted
	s.Skipped += result.Skipped
	s.Dropped += result.Dropped
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

func (s *Summary) RowsPerSecond() float64 {
	if s.TotalDuration == 0 {
		return 0
	}
	return float64(s.Rows) / s.TotalDuration.Seconds()
}

// DroppedPercentage is the share of rows abandoned by a transformer.
func (s *Summary) DroppedPercentage() float64 {
	if s.Rows == 0 {
		return 0
	}
	return (float64(s.Dropped) / float64(s.Rows)) * 100
}
