package connector

import (
	"context"
	"fmt"

	"github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/domain/result"
	"github.com/atricence/voxdata/internal/domain/schema"
	"github.com/atricence/voxdata/internal/engine"
	"github.com/atricence/voxdata/internal/source"
)

// DatasetSupport is the support tickets dataset identifier.
const DatasetSupport = "support"

// PriorityOrder is the fixed urgency ordering for the ticket priority
// field: high sorts first regardless of sort direction.
var PriorityOrder = []string{"high", "medium", "low"}

// Support adapts the ticket collection: filterable by priority, status,
// and customer id; the priority field sorts by urgency, not lexically.
type Support struct {
	loader source.Loader
	desc   schema.Descriptor
}

// NewSupport creates the support tickets connector.
func NewSupport(loader source.Loader) *Support {
	desc, err := schema.NewDescriptor(
		DatasetSupport,
		"Support tickets: subjects, priorities, open/closed status",
		"ticket_id",
		"created_at",
		[]schema.Field{
			schema.NewField("ticket_id", schema.Number, "The ticket ID").WithSort(),
			schema.NewField("subject", schema.String, "Ticket subject line").WithSearch(),
			schema.NewField("priority", schema.String, "Ticket priority").
				WithFilter("high", "medium", "low").WithSort(),
			schema.NewField("status", schema.String, "Ticket status").
				WithFilter("open", "closed").WithSort(),
			schema.NewField("customer_id", schema.Number, "Owning customer ID").WithFilter(),
			schema.NewField("created_at", schema.Date, "Ticket creation date").WithSort(),
		},
	)
	if err != nil {
		panic("support descriptor: " + err.Error()) // static definition, cannot fail
	}
	return &Support{loader: loader, desc: desc}
}

// Fetch implements Connector.
func (s *Support) Fetch(ctx context.Context, spec query.Spec) (result.Slice, error) {
	records, err := s.loader.Load(ctx, DatasetSupport)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load support: %w", err)
	}

	filters, err := matchFilters(s.desc, spec.Filters())
	if err != nil {
		return result.Slice{}, err
	}

	return engine.Apply(
		records, filters,
		resolveSort(s.desc, spec.SortBy()), spec.SortDir(),
		spec.Page(), spec.Limit(),
		engine.WithCategoricalOrder("priority", PriorityOrder),
	), nil
}

// Search implements Connector.
func (s *Support) Search(ctx context.Context, text string, limit int) (result.Slice, error) {
	records, err := s.loader.Load(ctx, DatasetSupport)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load support: %w", err)
	}
	return engine.Search(records, s.desc.SearchFields(), text, limit), nil
}

// GetByID implements Connector.
func (s *Support) GetByID(ctx context.Context, id string) (record.Record, error) {
	records, err := s.loader.Load(ctx, DatasetSupport)
	if err != nil {
		return nil, fmt.Errorf("load support: %w", err)
	}
	return findByID(records, s.desc.IDField(), id)
}

// Describe implements Connector.
func (s *Support) Describe() schema.Descriptor { return s.desc }
