package directive

// Kind names a built-in directive.
type Kind string

const (
	KindInclude  Kind = "include"
	KindSkip     Kind = "skip"
	KindCompare  Kind = "compare"
	KindOmit     Kind = "omit"
	KindDiff     Kind = "diff"
	KindSubtract Kind = "subtract"
	KindIndexed  Kind = "indexed"
	KindFilter   Kind = "filter"
	KindGroupOn  Kind = "groupOn"
	KindGroupBy  Kind = "groupBy"
	KindDivide   Kind = "divide"
)

// PreExecuted reports whether the directive is resolved while the query is
// built.
func (k Kind) PreExecuted() bool {
	switch k {
	case KindInclude, KindSkip, KindCompare:
		return true
	default:
		return false
	}
}

// PostExecuted reports whether the directive compiles to a Transformer.
func (k Kind) PostExecuted() bool {
	switch k {
	case KindOmit, KindDiff, KindSubtract, KindIndexed, KindFilter, KindGroupOn, KindGroupBy, KindDivide:
		return true
	default:
		return false
	}
}

// On tells a directive whether it annotates a metric or a dimension.
type On string

const (
	OnMetric    On = "metric"
	OnDimension On = "dimension"
)
