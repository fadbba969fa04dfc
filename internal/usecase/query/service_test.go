package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/atricence/voxdata/internal/domain"
	domquery "github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/shape"
)

func TestQuery_ActiveCustomersFirstPage(t *testing.T) {
	svc := newTestService(t)

	spec := mustSpec(t, "crm",
		[]domquery.Pair{{Key: "status", Value: "active"}}, "", 1, 3)
	env, err := svc.Query(context.Background(), spec)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	md := env.Metadata
	if md.TotalResults != 24 {
		t.Errorf("total_results = %d, want 24", md.TotalResults)
	}
	if md.ReturnedResults != 3 {
		t.Errorf("returned_results = %d, want 3", md.ReturnedResults)
	}
	if md.Page != 1 {
		t.Errorf("page = %d, want 1", md.Page)
	}
	if md.TotalPages != 8 {
		t.Errorf("total_pages = %d, want 8", md.TotalPages)
	}
	if md.DataType != shape.Tabular {
		t.Errorf("data_type = %q, want tabular", md.DataType)
	}
	if md.FreshnessLabel != "Data as of 2025-08-24 09:30 UTC" {
		t.Errorf("freshness = %q", md.FreshnessLabel)
	}
	if md.QueryContext != "Showing 3 of 24 crm records (filtered by status=active), page 1" {
		t.Errorf("query_context = %q", md.QueryContext)
	}
	if !strings.Contains(env.VoiceSummary, "24 customers") ||
		!strings.Contains(env.VoiceSummary, "3 are active") {
		t.Errorf("voice_summary = %q", env.VoiceSummary)
	}
	if md.ContinuationHint != "There are 21 more results. Ask me to show more if you'd like." {
		t.Errorf("continuation_hint = %q", md.ContinuationHint)
	}
}

func TestQuery_EmptyResultEnvelope(t *testing.T) {
	svc := newTestService(t)

	spec := mustSpec(t, "support",
		[]domquery.Pair{{Key: "customer_id", Value: "9999"}}, "", 1, 10)
	env, err := svc.Query(context.Background(), spec)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if env.Metadata.TotalResults != 0 || env.Metadata.ReturnedResults != 0 {
		t.Errorf("totals = %d/%d, want 0/0",
			env.Metadata.TotalResults, env.Metadata.ReturnedResults)
	}
	if env.Metadata.TotalPages != 0 {
		t.Errorf("total_pages = %d, want 0 for empty result", env.Metadata.TotalPages)
	}
	if env.Metadata.ContinuationHint != "" {
		t.Errorf("continuation_hint = %q, want empty", env.Metadata.ContinuationHint)
	}
	if !strings.Contains(env.VoiceSummary, "didn't find any") {
		t.Errorf("voice_summary = %q", env.VoiceSummary)
	}
	if env.Items == nil {
		t.Error("items must be an empty slice, not nil, for stable JSON")
	}
}

func TestQuery_SearchPath(t *testing.T) {
	svc := newTestService(t)

	env, err := svc.Query(context.Background(),
		mustSpec(t, "crm", nil, "customer 5", 1, 10))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	// "Customer 5" and "Customer 50" both carry the substring.
	if env.Metadata.TotalResults != 2 {
		t.Errorf("total_results = %d, want 2", env.Metadata.TotalResults)
	}
	if !strings.Contains(env.Metadata.QueryContext, `(matching "customer 5")`) {
		t.Errorf("query_context = %q", env.Metadata.QueryContext)
	}
}

func TestQuery_UnknownDataset(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Query(context.Background(),
		mustSpec(t, "warehouse", nil, "", 1, 10))
	if !errors.Is(err, domain.ErrUnknownDataset) {
		t.Fatalf("expected ErrUnknownDataset, got %v", err)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	svc := newTestService(t)
	spec := mustSpec(t, "crm",
		[]domquery.Pair{{Key: "status", Value: "active"}}, "", 2, 5)

	first, err := svc.Query(context.Background(), spec)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	a, _ := json.Marshal(first)

	for i := 0; i < 5; i++ {
		again, err := svc.Query(context.Background(), spec)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		b, _ := json.Marshal(again)
		if string(a) != string(b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
		}
	}
}

func TestGetByID(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.GetByID(context.Background(), "crm", "1003")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	name, _ := rec.String("name")
	if name != "Customer 3" {
		t.Errorf("name = %q", name)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "crm", "999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	svc := newTestService(t)

	env, err := svc.Summary(context.Background(), "analytics", "revenue", 7)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if env.Metadata.DataType != shape.Aggregate {
		t.Errorf("data_type = %q, want aggregate", env.Metadata.DataType)
	}
	if env.Metadata.TotalPages != 1 {
		t.Errorf("total_pages = %d, want 1", env.Metadata.TotalPages)
	}
	if env.Metadata.QueryContext != "Summary of revenue, last 7 days" {
		t.Errorf("query_context = %q", env.Metadata.QueryContext)
	}
	if !strings.Contains(env.VoiceSummary, "the average revenue was 115") {
		t.Errorf("voice_summary = %q", env.VoiceSummary)
	}
	if !strings.Contains(env.VoiceSummary, "The trend is up") {
		t.Errorf("voice_summary = %q", env.VoiceSummary)
	}
}

func TestSummary_UnsupportedDataset(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Summary(context.Background(), "crm", "", 7)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSupportsSummary(t *testing.T) {
	svc := newTestService(t)

	if !svc.SupportsSummary("analytics") {
		t.Error("analytics should support summaries")
	}
	if svc.SupportsSummary("crm") {
		t.Error("crm should not support summaries")
	}
	if svc.SupportsSummary("warehouse") {
		t.Error("unknown dataset should not support summaries")
	}
}

func TestDescriptors_RegistrationOrder(t *testing.T) {
	svc := newTestService(t)

	descs := svc.Descriptors()
	want := []string{"crm", "support", "analytics"}
	if len(descs) != len(want) {
		t.Fatalf("descriptors = %d, want %d", len(descs), len(want))
	}
	for i, d := range descs {
		if d.Dataset() != want[i] {
			t.Errorf("descriptor[%d] = %q, want %q", i, d.Dataset(), want[i])
		}
	}
}
