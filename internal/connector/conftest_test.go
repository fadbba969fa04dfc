package connector

import (
	"context"
	"testing"

	"github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/record"
)

// mockLoader implements source.Loader for tests.
type mockLoader struct {
	loadFn func(ctx context.Context, dataset string) ([]record.Record, error)
	pingFn func(ctx context.Context) error
}

func (m *mockLoader) Load(ctx context.Context, dataset string) ([]record.Record, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, dataset)
	}
	return nil, nil
}

func (m *mockLoader) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func fixedLoader(records []record.Record) *mockLoader {
	return &mockLoader{
		loadFn: func(context.Context, string) ([]record.Record, error) {
			return records, nil
		},
	}
}

func mustSpec(
	t *testing.T,
	dataset string,
	pairs []query.Pair,
	sortBy string,
	dir query.Direction,
	page, limit int,
) query.Spec {
	t.Helper()
	spec, err := query.New(dataset, pairs, "", sortBy, dir, page, limit)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return spec
}

func testCustomers() []record.Record {
	return []record.Record{
		{"customer_id": float64(1001), "name": "Ava Klein", "email": "ava.klein@example.com", "status": "active", "created_at": "2025-01-10"},
		{"customer_id": float64(1002), "name": "Liam Moreno", "email": "liam.moreno@example.com", "status": "inactive", "created_at": "2025-02-14"},
		{"customer_id": float64(1003), "name": "Maya Patel", "email": "maya.patel@example.com", "status": "active", "created_at": "2025-03-03"},
		{"customer_id": float64(1004), "name": "Noah Singh", "email": "noah.singh@example.com", "status": "active", "created_at": "2025-04-21"},
		{"customer_id": float64(1005), "name": "Zoe Okafor", "email": "zoe.okafor@example.com", "status": "inactive", "created_at": "2025-05-30"},
	}
}

func testTickets() []record.Record {
	return []record.Record{
		{"ticket_id": float64(5001), "subject": "Cannot log in", "priority": "low", "status": "open", "customer_id": float64(1001), "created_at": "2025-06-01"},
		{"ticket_id": float64(5002), "subject": "Invoice mismatch", "priority": "high", "status": "open", "customer_id": float64(1002), "created_at": "2025-06-02"},
		{"ticket_id": float64(5003), "subject": "Export times out", "priority": "medium", "status": "closed", "customer_id": float64(1001), "created_at": "2025-06-03"},
		{"ticket_id": float64(5004), "subject": "Dashboard broken", "priority": "high", "status": "open", "customer_id": float64(1003), "created_at": "2025-06-04"},
	}
}

func testMetricPoints() []record.Record {
	return []record.Record{
		{"metric": "revenue", "date": "2025-08-20", "value": float64(100)},
		{"metric": "revenue", "date": "2025-08-21", "value": float64(110)},
		{"metric": "revenue", "date": "2025-08-22", "value": float64(120)},
		{"metric": "revenue", "date": "2025-08-23", "value": float64(130)},
		{"metric": "signups", "date": "2025-08-23", "value": float64(40)},
		{"metric": "revenue", "date": "2025-08-10", "value": float64(90)},
	}
}
