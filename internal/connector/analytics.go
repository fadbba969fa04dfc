package connector

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/atricence/voxdata/internal/domain"
	"github.com/atricence/voxdata/internal/domain/filter"
	"github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/result"
	"github.com/atricence/voxdata/internal/domain/schema"
	"github.com/atricence/voxdata/internal/engine"
	"github.com/atricence/voxdata/internal/source"
)

// DatasetAnalytics is the analytics metric-points dataset identifier.
const DatasetAnalytics = "analytics"

// DefaultSummaryDays is the default look-back window for summaries.
const DefaultSummaryDays = 7

// Analytics adapts the metric-point collection: one record per metric per
// day. The "days" filter is virtual: it becomes a date floor relative to
// the current day. Metric points carry no single-record identifier, so
// GetByID is always a miss.
type Analytics struct {
	loader source.Loader
	desc   schema.Descriptor
	now    func() time.Time
}

// NewAnalytics creates the analytics connector.
func NewAnalytics(loader source.Loader) *Analytics {
	desc, err := schema.NewDescriptor(
		DatasetAnalytics,
		"Analytics metric points: one value per metric per day",
		"",
		"date",
		[]schema.Field{
			schema.NewField("metric", schema.String, "Metric name, e.g. daily_active_users").
				WithFilter().WithSearch(),
			schema.NewField("days", schema.Number, "Look-back window in days").WithFilter(),
			schema.NewField("date", schema.Date, "Measurement date").WithSort(),
			schema.NewField("value", schema.Number, "Measured value").WithSort(),
		},
	)
	if err != nil {
		panic("analytics descriptor: " + err.Error()) // static definition, cannot fail
	}
	return &Analytics{loader: loader, desc: desc, now: time.Now}
}

// WithClock overrides the time source. Used by tests to pin the relative
// date cutoff.
func (a *Analytics) WithClock(now func() time.Time) *Analytics {
	a.now = now
	return a
}

// Fetch implements Connector.
func (a *Analytics) Fetch(ctx context.Context, spec query.Spec) (result.Slice, error) {
	records, err := a.loader.Load(ctx, DatasetAnalytics)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load analytics: %w", err)
	}

	filters, err := a.buildFilters(spec.Filters())
	if err != nil {
		return result.Slice{}, err
	}

	return engine.Apply(
		records, filters,
		resolveSort(a.desc, spec.SortBy()), spec.SortDir(),
		spec.Page(), spec.Limit(),
	), nil
}

// buildFilters maps raw pairs to conditions: "days" becomes a date floor,
// everything else a validated match. Unknown fields drop silently.
func (a *Analytics) buildFilters(pairs []query.Pair) (filter.Set, error) {
	var conditions []filter.Condition
	for _, p := range pairs {
		if p.Value == "" || !a.desc.IsFilterable(p.Key) {
			continue
		}
		if p.Key == "days" {
			days, err := strconv.Atoi(p.Value)
			if err != nil || days <= 0 {
				continue // malformed window, treated as unset
			}
			c, err := filter.NewSince("date", a.cutoff(days))
			if err != nil {
				return filter.Set{}, fmt.Errorf("days filter: %w", err)
			}
			conditions = append(conditions, c)
			continue
		}
		c, err := filter.NewMatch(p.Key, p.Value)
		if err != nil {
			return filter.Set{}, fmt.Errorf("filter %s: %w", p.Key, err)
		}
		conditions = append(conditions, c)
	}
	return filter.NewSet(conditions)
}

func (a *Analytics) cutoff(days int) string {
	return a.now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}

// Search implements Connector.
func (a *Analytics) Search(ctx context.Context, text string, limit int) (result.Slice, error) {
	records, err := a.loader.Load(ctx, DatasetAnalytics)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load analytics: %w", err)
	}
	return engine.Search(records, a.desc.SearchFields(), text, limit), nil
}

// GetByID implements Connector. Metric points have no primary identifier.
func (a *Analytics) GetByID(context.Context, string) (record.Record, error) {
	return nil, fmt.Errorf("%w: analytics records have no identifier", domain.ErrNotFound)
}

// Describe implements Connector.
func (a *Analytics) Describe() schema.Descriptor { return a.desc }

// Summary implements Aggregator: average, min, max, latest value, and a
// coarse trend over the look-back window. The trend compares the mean of
// the older half of the date-ordered points to the mean of the newer half.
func (a *Analytics) Summary(ctx context.Context, metric string, days int) (record.Record, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}

	var pairs []query.Pair
	if metric != "" {
		pairs = append(pairs, query.Pair{Key: "metric", Value: metric})
	}
	pairs = append(pairs, query.Pair{Key: "days", Value: strconv.Itoa(days)})

	spec, err := query.New(DatasetAnalytics, pairs, "", "date", query.Desc, 1, query.MaxLimit)
	if err != nil {
		return nil, err
	}

	slice, err := a.Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}

	items := slice.Items()
	if len(items) == 0 {
		return record.Record{
			"summary": "No data available for the requested period.",
		}, nil
	}

	values := make([]float64, 0, len(items))
	for _, r := range items {
		if v, ok := r.Number("value"); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return record.Record{
			"summary": "No data available for the requested period.",
		}, nil
	}

	latest := items[0] // newest first after the date sort
	latestValue, _ := latest.Number("value")
	latestDate, _ := latest.String("date")

	minV, maxV, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
	}

	metricName := metric
	if metricName == "" {
		metricName = "all"
	}

	return record.Record{
		"metric":       metricName,
		"period_days":  float64(days),
		"data_points":  float64(len(values)),
		"average":      math.Round(sum/float64(len(values))*10) / 10,
		"min":          minV,
		"max":          maxV,
		"latest_value": latestValue,
		"latest_date":  latestDate,
		"trend":        trend(values),
	}, nil
}

// trend compares the newer half of the series (values are newest-first)
// to the older half.
func trend(values []float64) string {
	mid := len(values) / 2
	if mid == 0 {
		return "flat"
	}
	newer := mean(values[:mid])
	older := mean(values[mid:])
	switch {
	case newer > older:
		return "up"
	case newer < older:
		return "down"
	default:
		return "flat"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
