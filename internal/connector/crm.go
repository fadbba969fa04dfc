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

// DatasetCRM is the CRM customers dataset identifier.
const DatasetCRM = "crm"

// CRM adapts the customer collection: filterable by status, searchable by
// name, email, and customer id, sorted by creation date by default.
type CRM struct {
	loader source.Loader
	desc   schema.Descriptor
}

// NewCRM creates the CRM connector.
func NewCRM(loader source.Loader) *CRM {
	desc, err := schema.NewDescriptor(
		DatasetCRM,
		"CRM customer records: names, emails, subscription status",
		"customer_id",
		"created_at",
		[]schema.Field{
			schema.NewField("customer_id", schema.Number, "The customer ID").WithSort().WithSearch(),
			schema.NewField("name", schema.String, "Customer full name").WithSort().WithSearch(),
			schema.NewField("email", schema.String, "Customer email address").WithSearch(),
			schema.NewField("status", schema.String, "Subscription status").
				WithFilter("active", "inactive").WithSort(),
			schema.NewField("created_at", schema.Date, "Signup date").WithSort(),
		},
	)
	if err != nil {
		panic("crm descriptor: " + err.Error()) // static definition, cannot fail
	}
	return &CRM{loader: loader, desc: desc}
}

// Fetch implements Connector.
func (c *CRM) Fetch(ctx context.Context, spec query.Spec) (result.Slice, error) {
	records, err := c.loader.Load(ctx, DatasetCRM)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load crm: %w", err)
	}

	filters, err := matchFilters(c.desc, spec.Filters())
	if err != nil {
		return result.Slice{}, err
	}

	return engine.Apply(
		records, filters,
		resolveSort(c.desc, spec.SortBy()), spec.SortDir(),
		spec.Page(), spec.Limit(),
	), nil
}

// Search implements Connector.
func (c *CRM) Search(ctx context.Context, text string, limit int) (result.Slice, error) {
	records, err := c.loader.Load(ctx, DatasetCRM)
	if err != nil {
		return result.Slice{}, fmt.Errorf("load crm: %w", err)
	}
	return engine.Search(records, c.desc.SearchFields(), text, limit), nil
}

// GetByID implements Connector.
func (c *CRM) GetByID(ctx context.Context, id string) (record.Record, error) {
	records, err := c.loader.Load(ctx, DatasetCRM)
	if err != nil {
		return nil, fmt.Errorf("load crm: %w", err)
	}
	return findByID(records, c.desc.IDField(), id)
}

// Describe implements Connector.
func (c *CRM) Describe() schema.Descriptor { return c.desc }
