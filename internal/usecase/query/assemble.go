package query

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atricence/voxdata/internal/domain/envelope"
	domquery "github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/result"
	"github.com/atricence/voxdata/internal/domain/schema"
	"github.com/atricence/voxdata/internal/usecase/classify"
	"github.com/atricence/voxdata/internal/usecase/voice"
)

// assemble composes the uniform envelope: records, pagination metadata,
// shape tag, freshness label, and the spoken summary. Every dataset flows
// through this one function, which is what keeps the envelope shape
// structurally identical across datasets.
func (s *Service) assemble(
	desc schema.Descriptor,
	spec domquery.Spec,
	slice result.Slice,
) envelope.Envelope {
	total := slice.Total()
	returned := slice.Len()

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(spec.Limit())))
	}

	return envelope.Envelope{
		Items: slice.Items(),
		Metadata: envelope.Metadata{
			TotalResults:     total,
			ReturnedResults:  returned,
			Page:             spec.Page(),
			TotalPages:       totalPages,
			DataType:         classify.Classify(spec.Dataset(), slice.Items()),
			FreshnessLabel:   freshnessLabel(s.now()),
			ContinuationHint: voice.ContinuationHint(total, returned, spec.Page(), spec.Limit()),
			QueryContext:     queryContext(desc, spec, total, returned),
		},
		VoiceSummary: voice.Summarize(spec.Dataset(), slice.Items(), total),
	}
}

// freshnessLabel marks when the envelope was assembled. It is a
// human-readable marker, not a staleness guarantee for the backing data.
func freshnessLabel(now time.Time) string {
	return "Data as of " + now.UTC().Format("2006-01-02 15:04 UTC")
}

// queryContext renders the applied query as one human-readable line,
// e.g. `Showing 3 of 24 crm records (filtered by status=active), page 1`.
// Only filters the descriptor recognizes count as applied; dropped pairs
// never appear.
func queryContext(desc schema.Descriptor, spec domquery.Spec, total, returned int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d %s records", returned, total, spec.Dataset())

	if spec.Search() != "" {
		fmt.Fprintf(&b, " (matching %q)", spec.Search())
	} else if applied := appliedFilters(desc, spec.Filters()); len(applied) > 0 {
		fmt.Fprintf(&b, " (filtered by %s)", strings.Join(applied, ", "))
	}

	fmt.Fprintf(&b, ", page %d", spec.Page())
	return b.String()
}

func appliedFilters(desc schema.Descriptor, pairs []domquery.Pair) []string {
	var out []string
	for _, p := range pairs {
		if p.Value == "" || !desc.IsFilterable(p.Key) {
			continue
		}
		out = append(out, p.Key+"="+p.Value)
	}
	return out
}
