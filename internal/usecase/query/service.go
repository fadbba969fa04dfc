// Package query is the pipeline's top-level use case: it runs a query
// spec through the dataset's connector, classifies and summarizes the
// result, and assembles the uniform response envelope.
package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/connector"
	"github.com/atricence/voxdata/internal/domain"
	"github.com/atricence/voxdata/internal/domain/envelope"
	domquery "github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/result"
	"github.com/atricence/voxdata/internal/domain/schema"
	"github.com/atricence/voxdata/internal/metrics"
	"github.com/atricence/voxdata/internal/usecase/classify"
	"github.com/atricence/voxdata/internal/usecase/voice"
)

// Service executes queries against registered datasets and shapes the
// uniform envelope both consumer surfaces receive. It is stateless per
// call: every request is one synchronous computation over an immutable
// collection snapshot, so concurrent requests need no coordination.
type Service struct {
	connectors Connectors
	logger     *zap.Logger
	now        func() time.Time
}

// New creates the query service.
func New(connectors Connectors, logger *zap.Logger) *Service {
	return &Service{connectors: connectors, logger: logger, now: time.Now}
}

// WithClock overrides the time source used for freshness labels.
// Tests use it to pin envelopes byte for byte.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Query runs the full pipeline for one spec. A non-empty search text takes
// the free-text path; otherwise filters, sort, and pagination apply.
func (s *Service) Query(ctx context.Context, spec domquery.Spec) (envelope.Envelope, error) {
	start := time.Now()

	c, err := s.connectors.Get(spec.Dataset())
	if err != nil {
		metrics.ObserveQuery(spec.Dataset(), "unknown_dataset", time.Since(start))
		return envelope.Envelope{}, err
	}

	var slice result.Slice
	if spec.Search() != "" {
		slice, err = c.Search(ctx, spec.Search(), spec.Limit())
	} else {
		slice, err = c.Fetch(ctx, spec)
	}
	if err != nil {
		metrics.ObserveQuery(spec.Dataset(), "error", time.Since(start))
		return envelope.Envelope{}, fmt.Errorf("query %s: %w", spec.Dataset(), err)
	}

	env := s.assemble(c.Describe(), spec, slice)

	s.logger.Debug("query executed",
		zap.String("dataset", spec.Dataset()),
		zap.Int("total", slice.Total()),
		zap.Int("returned", slice.Len()),
		zap.Int("page", spec.Page()),
	)
	metrics.ObserveQuery(spec.Dataset(), "ok", time.Since(start))
	return env, nil
}

// GetByID resolves one record by the dataset's primary identifier.
// A miss is domain.ErrNotFound, recoverable by the caller.
func (s *Service) GetByID(ctx context.Context, dataset, id string) (record.Record, error) {
	c, err := s.connectors.Get(dataset)
	if err != nil {
		return nil, err
	}
	rec, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", dataset, id, err)
	}
	return rec, nil
}

// Summary runs the aggregate reduction for datasets that support it.
func (s *Service) Summary(ctx context.Context, dataset, metric string, days int) (envelope.Envelope, error) {
	c, err := s.connectors.Get(dataset)
	if err != nil {
		return envelope.Envelope{}, err
	}

	agg, ok := c.(connector.Aggregator)
	if !ok {
		return envelope.Envelope{}, fmt.Errorf(
			"%w: dataset %q does not support summaries", domain.ErrInvalidQuery, dataset)
	}

	if days <= 0 {
		days = connector.DefaultSummaryDays
	}
	rec, err := agg.Summary(ctx, metric, days)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("summarize %s: %w", dataset, err)
	}

	slice := result.New([]record.Record{rec}, 1)
	sh := classify.Classify(dataset, slice.Items())
	summary := voice.Summarize(dataset, slice.Items(), slice.Total())

	metricName := metric
	if metricName == "" {
		metricName = "all metrics"
	}
	return envelope.Envelope{
		Items: slice.Items(),
		Metadata: envelope.Metadata{
			TotalResults:    1,
			ReturnedResults: 1,
			Page:            1,
			TotalPages:      1,
			DataType:        sh,
			FreshnessLabel:  freshnessLabel(s.now()),
			QueryContext:    fmt.Sprintf("Summary of %s, last %d days", metricName, days),
		},
		VoiceSummary: summary,
	}, nil
}

// SupportsSummary reports whether a dataset's connector can aggregate.
func (s *Service) SupportsSummary(dataset string) bool {
	c, err := s.connectors.Get(dataset)
	if err != nil {
		return false
	}
	_, ok := c.(connector.Aggregator)
	return ok
}

// Fields returns the queryable-field descriptor for one dataset.
func (s *Service) Fields(dataset string) (schema.Descriptor, error) {
	c, err := s.connectors.Get(dataset)
	if err != nil {
		return schema.Descriptor{}, err
	}
	return c.Describe(), nil
}

// Descriptors returns every registered dataset's descriptor in
// registration order. The tool-definition layer builds its schemas from
// these.
func (s *Service) Descriptors() []schema.Descriptor {
	var out []schema.Descriptor
	for _, name := range s.connectors.Datasets() {
		c, err := s.connectors.Get(name)
		if err != nil {
			continue
		}
		out = append(out, c.Describe())
	}
	return out
}
