// Package voice turns result slices into short spoken-language summaries
// tuned for text-to-speech playback, not for reading.
//
// Status and priority counts are deliberately computed over the returned
// page, not the full filtered set: the spoken summary describes what is
// being shown, while metadata totals describe everything that matched.
package voice

import (
	"fmt"
	"strings"

	"github.com/atricence/voxdata/internal/domain/record"
)

// Dataset identifiers the summarizer knows templates for. Anything else
// degrades to a generic count-only sentence.
const (
	datasetCRM       = "crm"
	datasetSupport   = "support"
	datasetAnalytics = "analytics"
)

// Summarize produces the spoken summary for one result page.
// total is the full pre-pagination match count; items is the page shown.
func Summarize(dataset string, items []record.Record, total int) string {
	if len(items) == 0 {
		return fmt.Sprintf("I didn't find any %s records matching your query.", spokenName(dataset))
	}

	switch dataset {
	case datasetCRM:
		return summarizeCRM(items, total)
	case datasetSupport:
		return summarizeSupport(items, total)
	case datasetAnalytics:
		return summarizeAnalytics(items, total)
	default:
		return summarizeGeneric(dataset, items, total)
	}
}

func summarizeCRM(items []record.Record, total int) string {
	active := countFieldValue(items, "status", "active")
	return fmt.Sprintf(
		"I found %d customers in the CRM. %d are active. Showing the first %d.",
		total, active, len(items),
	)
}

func summarizeSupport(items []record.Record, total int) string {
	open := countFieldValue(items, "status", "open")
	high := countFieldValue(items, "priority", "high")

	parts := []string{fmt.Sprintf("I found %d support tickets", total)}
	if open > 0 {
		parts = append(parts, fmt.Sprintf("%d are currently open", open))
	}
	if high > 0 {
		parts = append(parts, fmt.Sprintf("%d are high priority", high))
	}
	return strings.Join(parts, ". ") + "."
}

func summarizeAnalytics(items []record.Record, total int) string {
	// A single aggregate record reads out its reduction and trend.
	if first := items[0]; first.Has("average") {
		period, _ := first.String("period_days")
		metric, _ := first.String("metric")
		if metric == "" {
			metric = "metric"
		}
		average, _ := first.String("average")
		trend, ok := first.String("trend")
		if !ok {
			trend = "flat"
		}
		return fmt.Sprintf(
			"Over the last %s days, the average %s was %s. The trend is %s.",
			period, metric, average, trend,
		)
	}
	return fmt.Sprintf("I found %d analytics data points. Showing %d.", total, len(items))
}

func summarizeGeneric(dataset string, items []record.Record, total int) string {
	if total > len(items) {
		return fmt.Sprintf("I found %d %s records. Showing the first %d.", total, spokenName(dataset), len(items))
	}
	return fmt.Sprintf("Here are %d %s records.", len(items), spokenName(dataset))
}

// ContinuationHint tells the listener more results remain beyond the
// current page window. Empty when the window reaches the end.
func ContinuationHint(total, returned, page, limit int) string {
	seen := (page-1)*limit + returned
	if total <= seen {
		return ""
	}
	return fmt.Sprintf("There are %d more results. Ask me to show more if you'd like.", total-seen)
}

// Apology is the pre-synthesized failure sentence handed to the speech
// layer; raw error text is never read aloud.
func Apology() string {
	return "Sorry, I couldn't look that up right now. Please try again in a moment."
}

func spokenName(dataset string) string {
	switch dataset {
	case datasetCRM:
		return "CRM"
	case datasetSupport:
		return "support ticket"
	case datasetAnalytics:
		return "analytics"
	default:
		return dataset
	}
}

func countFieldValue(items []record.Record, field, want string) int {
	n := 0
	for _, r := range items {
		if v, ok := r.String(field); ok && strings.EqualFold(v, want) {
			n++
		}
	}
	return n
}
