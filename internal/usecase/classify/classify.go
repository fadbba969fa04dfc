// Package classify infers the shape of a result slice for envelope
// annotation. Classification is a pure, total function: it inspects only
// the records it is given and always produces a tag.
package classify

import (
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/shape"
)

// Classify tags a result slice with its shape.
//
// Rules, first match wins:
//   - a single record carrying an aggregate marker is an aggregate
//   - records with a date field and a numeric value measure are a time series
//   - records nesting objects or arrays are hierarchical
//   - everything else, including an empty slice, is tabular
func Classify(_ string, items []record.Record) shape.Shape {
	if len(items) == 0 {
		return shape.Tabular
	}

	sample := items[0]

	if len(items) == 1 && isAggregate(sample) {
		return shape.Aggregate
	}
	if isTimeSeries(sample) {
		return shape.TimeSeries
	}
	if isHierarchical(sample) {
		return shape.Hierarchical
	}
	return shape.Tabular
}

// isAggregate recognizes summary records by their reduction fields.
func isAggregate(r record.Record) bool {
	return r.Has("average") || r.Has("summary")
}

func isTimeSeries(r record.Record) bool {
	if !r.Has("date") {
		return false
	}
	_, ok := r.Number("value")
	return ok
}

func isHierarchical(r record.Record) bool {
	for _, v := range r {
		switch v.(type) {
		case map[string]any, []any:
			return true
		}
	}
	return false
}
