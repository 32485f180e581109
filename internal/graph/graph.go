package graph

import "context"

// Querier is the contract for the graph query service. Implementations
// return one ordered record per result row and an error for malformed
// queries; records carry no declared schema.
type Querier interface {
	Execute(ctx context.Context, query string, params map[string]interface{}) ([]Record, error)
}

// Record is a single result row: field name -> value.
type Record map[string]Value

// Get returns the value for a field, or a null value if absent.
func (r Record) Get(field string) Value {
	if v, ok := r[field]; ok {
		return v
	}
	return Null()
}
