package classify

import (
	"testing"

	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/shape"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		items []record.Record
		want  shape.Shape
	}{
		{
			name:  "empty slice is tabular",
			items: nil,
			want:  shape.Tabular,
		},
		{
			name: "flat records are tabular",
			items: []record.Record{
				{"customer_id": float64(1), "name": "Ava", "status": "active"},
			},
			want: shape.Tabular,
		},
		{
			name: "date plus numeric value is a time series",
			items: []record.Record{
				{"metric": "revenue", "date": "2025-08-01", "value": float64(8400)},
				{"metric": "revenue", "date": "2025-08-02", "value": float64(8500)},
			},
			want: shape.TimeSeries,
		},
		{
			name: "date with non-numeric value is not a time series",
			items: []record.Record{
				{"date": "2025-08-01", "value": "n/a"},
			},
			want: shape.Tabular,
		},
		{
			name: "single record with average is an aggregate",
			items: []record.Record{
				{"metric": "revenue", "average": 8450.5, "trend": "up"},
			},
			want: shape.Aggregate,
		},
		{
			name: "single record with summary marker is an aggregate",
			items: []record.Record{
				{"summary": "No data available for the requested period."},
			},
			want: shape.Aggregate,
		},
		{
			name: "multiple records with average are not an aggregate",
			items: []record.Record{
				{"average": float64(1)},
				{"average": float64(2)},
			},
			want: shape.Tabular,
		},
		{
			name: "nested object is hierarchical",
			items: []record.Record{
				{"name": "Ava", "address": map[string]any{"city": "Oslo"}},
			},
			want: shape.Hierarchical,
		},
		{
			name: "nested array is hierarchical",
			items: []record.Record{
				{"name": "Ava", "tags": []any{"vip"}},
			},
			want: shape.Hierarchical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify("any", tt.items); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}
