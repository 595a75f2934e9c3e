package query

// Operator is a filter comparison.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Filter is one predicate of a Spec. Value is a []interface{} for OpIn.
type Filter struct {
	Field  string
	Column string
	Op     Operator
	Value  interface{}
}

// SortKey orders results by one column.
type SortKey struct {
	Field  string
	Column string
	Desc   bool
}

// Spec is a parsed list query.
type Spec struct {
	Filters []Filter
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

// StartIndex is the offset of the first item on the page.
func (s Spec) StartIndex() int {
	return (s.Page - 1) * s.Limit
}

// EndIndex is the offset one past the last item on the page.
func (s Spec) EndIndex() int {
	return s.Page * s.Limit
}

// With returns a copy of s with an extra equality filter, used to scope a
// list to a parent (e.g. the services of one business).
func (s Spec) With(field, column string, value interface{}) Spec {
	out := s
	out.Filters = append(append([]Filter(nil), s.Filters...), Filter{
		Field:  field,
		Column: column,
		Op:     OpEq,
		Value:  value,
	})
	return out
}
