// Package envelope defines the uniform response structure returned for
// every dataset. Field names and nesting are the compatibility surface the
// HTTP API and the tool-calling layer both rely on; tests pin them.
package envelope

import (
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/shape"
)

// Metadata accompanies every result page.
type Metadata struct {
	TotalResults     int         `json:"total_results"`
	ReturnedResults  int         `json:"returned_results"`
	Page             int         `json:"page"`
	TotalPages       int         `json:"total_pages"`
	DataType         shape.Shape `json:"data_type"`
	FreshnessLabel   string      `json:"freshness_label"`
	ContinuationHint string      `json:"continuation_hint,omitempty"`
	QueryContext     string      `json:"query_context"`
}

// Envelope is the unified response for all datasets and both consumer
// surfaces. Items is never null on the wire, always an array.
type Envelope struct {
	Items        []record.Record `json:"items"`
	Metadata     Metadata        `json:"metadata"`
	VoiceSummary string          `json:"voice_summary"`
}
