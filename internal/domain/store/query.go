package store

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist in a collection.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate record")
)

type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpNull    Op = "null"
	OpNotNull Op = "notnull"
)

// Filter is one predicate on a column. Value is ignored for OpNull/OpNotNull
// and must be a slice for OpIn.
type Filter struct {
	Field string
	Op    Op
	Value any
}

type Sort struct {
	Field string
	Desc  bool
}

// Query is an explicit query specification: all filters are ANDed, sorts are
// applied in order, Limit <= 0 means unbounded.
type Query struct {
	Filters []Filter
	Sort    []Sort
	Limit   int
}

func Eq(field string, v any) Filter  { return Filter{Field: field, Op: OpEq, Value: v} }
func Neq(field string, v any) Filter { return Filter{Field: field, Op: OpNeq, Value: v} }
func Gte(field string, v any) Filter { return Filter{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v any) Filter { return Filter{Field: field, Op: OpLte, Value: v} }
func In(field string, v ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: v}
}
func IsNull(field string) Filter  { return Filter{Field: field, Op: OpNull} }
func NotNull(field string) Filter { return Filter{Field: field, Op: OpNotNull} }

// Where starts a query from a set of filters.
func Where(filters ...Filter) Query { return Query{Filters: filters} }

// OrderBy returns a copy of q with an extra sort key.
func (q Query) OrderBy(field string, desc bool) Query {
	q.Sort = append(append([]Sort(nil), q.Sort...), Sort{Field: field, Desc: desc})
	return q
}

// Take returns a copy of q limited to n records.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}
