// Package shape defines the closed set of result-shape tags.
package shape

// Shape classifies the structure of a result slice. The tag annotates the
// response envelope so machine consumers and the language-model tool caller
// can pick a presentation without inspecting the records.
type Shape string

// The closed set of shapes.
const (
	Tabular      Shape = "tabular"
	TimeSeries   Shape = "time_series"
	Aggregate    Shape = "aggregate"
	Hierarchical Shape = "hierarchical"
)

// IsValid reports whether s is one of the known shapes.
func (s Shape) IsValid() bool {
	switch s {
	case Tabular, TimeSeries, Aggregate, Hierarchical:
		return true
	default:
		return false
	}
}
