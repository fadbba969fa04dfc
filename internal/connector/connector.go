// Package connector implements the record store adapters: one concrete
// variant per dataset, all satisfying the same capability set so the
// pipeline treats every dataset uniformly.
package connector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atricence/voxdata/internal/domain"
	"github.com/atricence/voxdata/internal/domain/filter"
	"github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/result"
	"github.com/atricence/voxdata/internal/domain/schema"
)

// Connector is the uniform capability set of a dataset adapter.
type Connector interface {
	// Fetch applies the spec's filters, sort, and page window.
	Fetch(ctx context.Context, spec query.Spec) (result.Slice, error)
	// Search runs a case-insensitive substring scan over the dataset's
	// searchable text fields. Total reflects all matches, items the first
	// limit matches in load order.
	Search(ctx context.Context, text string, limit int) (result.Slice, error)
	// GetByID returns the record whose primary identifier equals id,
	// or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (record.Record, error)
	// Describe returns the static queryable-field metadata.
	Describe() schema.Descriptor
}

// Aggregator is the optional capability of datasets that support an
// aggregated summary request (average/min/max/trend over a period).
type Aggregator interface {
	Summary(ctx context.Context, metric string, days int) (record.Record, error)
}

// Registry maps dataset identifiers to their connectors. Lookup of an
// unregistered name is a recoverable domain.ErrUnknownDataset; a failure
// inside one connector never affects the others.
type Registry struct {
	byName map[string]Connector
	order  []string
}

// NewRegistry creates a registry over the given connectors.
func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{byName: make(map[string]Connector, len(connectors))}
	for _, c := range connectors {
		name := c.Describe().Dataset()
		r.byName[name] = c
		r.order = append(r.order, name)
	}
	return r
}

// Get resolves a dataset name to its connector.
func (r *Registry) Get(dataset string) (Connector, error) {
	c, ok := r.byName[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDataset, dataset)
	}
	return c, nil
}

// Datasets returns the registered dataset names in registration order.
func (r *Registry) Datasets() []string { return r.order }

// matchFilters converts raw filter pairs to match conditions, validated
// against the descriptor. Pairs naming unknown or non-filterable fields
// are dropped silently per the query contract.
func matchFilters(desc schema.Descriptor, pairs []query.Pair) (filter.Set, error) {
	var conditions []filter.Condition
	for _, p := range pairs {
		if p.Value == "" || !desc.IsFilterable(p.Key) {
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

// resolveSort picks the sort field: the requested one when the descriptor
// knows it as sortable, otherwise the dataset default.
func resolveSort(desc schema.Descriptor, requested string) string {
	if requested != "" && desc.IsSortable(requested) {
		return requested
	}
	return desc.DefaultSort()
}

// findByID scans for a record whose idField equals id. Numeric identifiers
// compare numerically so "007" and "7" agree; everything else compares as
// case-insensitive text.
func findByID(records []record.Record, idField, id string) (record.Record, error) {
	for _, r := range records {
		got, ok := r.String(idField)
		if !ok {
			continue
		}
		if equalLoose(got, id) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", domain.ErrNotFound, idField, id)
}

func equalLoose(got, want string) bool {
	if gn, err1 := strconv.ParseFloat(got, 64); err1 == nil {
		if wn, err2 := strconv.ParseFloat(want, 64); err2 == nil {
			return gn == wn
		}
	}
	return strings.EqualFold(got, want)
}
