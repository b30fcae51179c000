package gateway

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

type Order struct {
	Column     string
	Descending bool
}

// Query selects rows matching every filter. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(column string, descending bool) Query {
	q.Order = &Order{Column: column, Descending: descending}
	return q
}

func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}
