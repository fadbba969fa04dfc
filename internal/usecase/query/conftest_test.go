package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/connector"
	domquery "github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
)

// staticLoader implements source.Loader over in-memory collections.
type staticLoader struct {
	collections map[string][]record.Record
	loadErr     error
}

func (l *staticLoader) Load(_ context.Context, dataset string) ([]record.Record, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	return l.collections[dataset], nil
}

func (l *staticLoader) Ping(context.Context) error { return l.loadErr }

func testClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 8, 24, 9, 30, 0, 0, time.UTC)
	}
}

// newTestService wires real connectors over in-memory data: 50 customers
// of which 24 are active, a handful of tickets, and a week of metrics.
func newTestService(t *testing.T) *Service {
	t.Helper()

	customers := make([]record.Record, 0, 50)
	for i := 1; i <= 50; i++ {
		status := "inactive"
		if i <= 24 {
			status = "active"
		}
		customers = append(customers, record.Record{
			"customer_id": float64(1000 + i),
			"name":        fmt.Sprintf("Customer %d", i),
			"email":       fmt.Sprintf("customer%d@example.com", i),
			"status":      status,
			"created_at":  fmt.Sprintf("2025-01-%02d", (i%27)+1),
		})
	}

	tickets := []record.Record{
		{"ticket_id": float64(5001), "subject": "Cannot log in", "priority": "high", "status": "open", "customer_id": float64(1001), "created_at": "2025-06-01"},
		{"ticket_id": float64(5002), "subject": "Invoice mismatch", "priority": "low", "status": "closed", "customer_id": float64(1002), "created_at": "2025-06-02"},
	}

	metrics := []record.Record{
		{"metric": "revenue", "date": "2025-08-20", "value": float64(100)},
		{"metric": "revenue", "date": "2025-08-21", "value": float64(110)},
		{"metric": "revenue", "date": "2025-08-22", "value": float64(120)},
		{"metric": "revenue", "date": "2025-08-23", "value": float64(130)},
	}

	loader := &staticLoader{collections: map[string][]record.Record{
		"crm":       customers,
		"support":   tickets,
		"analytics": metrics,
	}}

	registry := connector.NewRegistry(
		connector.NewCRM(loader),
		connector.NewSupport(loader),
		connector.NewAnalytics(loader).WithClock(testClock()),
	)
	return New(registry, zap.NewNop()).WithClock(testClock())
}

func mustSpec(
	t *testing.T,
	dataset string,
	pairs []domquery.Pair,
	search string,
	page, limit int,
) domquery.Spec {
	t.Helper()
	spec, err := domquery.New(dataset, pairs, search, "", domquery.Desc, page, limit)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return spec
}
