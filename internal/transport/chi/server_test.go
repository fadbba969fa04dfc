package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/connector"
	"github.com/atricence/voxdata/internal/domain/record"
	healthuc "github.com/atricence/voxdata/internal/usecase/health"
	queryuc "github.com/atricence/voxdata/internal/usecase/query"
)

// staticLoader implements source.Loader over in-memory collections.
type staticLoader struct {
	collections map[string][]record.Record
}

func (l *staticLoader) Load(_ context.Context, dataset string) ([]record.Record, error) {
	return l.collections[dataset], nil
}

func (l *staticLoader) Ping(context.Context) error { return nil }

// mockVoice implements the Voice interface for tests.
type mockVoice struct {
	askFn        func(ctx context.Context, question string) (string, error)
	transcribeFn func(ctx context.Context, filename string, audio io.Reader) (string, error)
	speakFn      func(ctx context.Context, text string) ([]byte, error)
}

func (m *mockVoice) Ask(ctx context.Context, q string) (string, error) {
	if m.askFn != nil {
		return m.askFn(ctx, q)
	}
	return "", nil
}

func (m *mockVoice) Transcribe(ctx context.Context, f string, a io.Reader) (string, error) {
	if m.transcribeFn != nil {
		return m.transcribeFn(ctx, f, a)
	}
	return "", nil
}

func (m *mockVoice) Speak(ctx context.Context, t string) ([]byte, error) {
	if m.speakFn != nil {
		return m.speakFn(ctx, t)
	}
	return nil, nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 8, 24, 9, 30, 0, 0, time.UTC)
	}
}

func newTestRouter(t *testing.T, voice Voice) http.Handler {
	t.Helper()

	loader := &staticLoader{collections: map[string][]record.Record{
		"crm": {
			{"customer_id": float64(1001), "name": "Ava Klein", "email": "ava@example.com", "status": "active", "created_at": "2025-01-10"},
			{"customer_id": float64(1002), "name": "Liam Moreno", "email": "liam@example.com", "status": "inactive", "created_at": "2025-02-14"},
			{"customer_id": float64(1003), "name": "Maya Patel", "email": "maya@example.com", "status": "active", "created_at": "2025-03-03"},
		},
		"support": {
			{"ticket_id": float64(5001), "subject": "Cannot log in", "priority": "high", "status": "open", "customer_id": float64(1001), "created_at": "2025-06-01"},
		},
		"analytics": {
			{"metric": "revenue", "date": "2025-08-20", "value": float64(100)},
			{"metric": "revenue", "date": "2025-08-23", "value": float64(130)},
		},
	}}

	registry := connector.NewRegistry(
		connector.NewCRM(loader),
		connector.NewSupport(loader),
		connector.NewAnalytics(loader).WithClock(fixedClock()),
	)
	querySvc := queryuc.New(registry, zap.NewNop()).WithClock(fixedClock())
	healthSvc := healthuc.New(map[string]healthuc.SourcePinger{"records": loader}, nil)

	server := NewServer(querySvc, healthSvc, voice, zap.NewNop())
	r := chi.NewRouter()
	server.Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return body
}

func TestQueryDataset_EnvelopeFieldNames(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm?status=active&limit=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	for _, key := range []string{"items", "metadata", "voice_summary"} {
		if _, ok := body[key]; !ok {
			t.Errorf("envelope key %q missing", key)
		}
	}

	md, ok := body["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("metadata malformed: %v", body["metadata"])
	}
	for _, key := range []string{
		"total_results", "returned_results", "page", "total_pages",
		"data_type", "freshness_label", "query_context",
	} {
		if _, ok := md[key]; !ok {
			t.Errorf("metadata key %q missing", key)
		}
	}

	if md["total_results"].(float64) != 2 {
		t.Errorf("total_results = %v", md["total_results"])
	}
	if md["data_type"] != "tabular" {
		t.Errorf("data_type = %v", md["data_type"])
	}
	if md["freshness_label"] != "Data as of 2025-08-24 09:30 UTC" {
		t.Errorf("freshness_label = %v", md["freshness_label"])
	}
}

func TestQueryDataset_ContinuationHintOmittedWhenComplete(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm")
	md := decodeBody(t, w)["metadata"].(map[string]any)
	if _, ok := md["continuation_hint"]; ok {
		t.Errorf("continuation_hint must be omitted when the window reaches the end: %v", md)
	}
}

func TestQueryDataset_UnknownDataset(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/warehouse")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeBody(t, w)["code"]; code != "unknown_dataset" {
		t.Errorf("code = %v", code)
	}
}

func TestQueryDataset_InvalidSortOrder(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm?sort_order=sideways")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeBody(t, w)["code"]; code != "invalid_query" {
		t.Errorf("code = %v", code)
	}
}

func TestQueryDataset_MalformedPaginationIsClamped(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm?page=banana&limit=-5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, malformed pagination must not be an error", w.Code)
	}
	md := decodeBody(t, w)["metadata"].(map[string]any)
	if md["page"].(float64) != 1 {
		t.Errorf("page = %v, want clamped to 1", md["page"])
	}
}

func TestQueryDataset_SearchParam(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm?search=maya")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	md := decodeBody(t, w)["metadata"].(map[string]any)
	if md["total_results"].(float64) != 1 {
		t.Errorf("total_results = %v", md["total_results"])
	}
	if !strings.Contains(md["query_context"].(string), `(matching "maya")`) {
		t.Errorf("query_context = %v", md["query_context"])
	}
}

func TestGetRecord(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm/records/1002")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if name := decodeBody(t, w)["name"]; name != "Liam Moreno" {
		t.Errorf("name = %v", name)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/crm/records/9999")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeBody(t, w)["code"]; code != "not_found" {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/analytics/summary?metric=revenue&days=7")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	md := body["metadata"].(map[string]any)
	if md["data_type"] != "aggregate" {
		t.Errorf("data_type = %v", md["data_type"])
	}
	items := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	agg := items[0].(map[string]any)
	if agg["average"].(float64) != 115 {
		t.Errorf("average = %v", agg["average"])
	}
}

func TestAnalyticsSummary_BadDays(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/data/analytics/summary?days=soon")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestToolsSchema(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/api/v1/tools/schema")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	tools := decodeBody(t, w)["tools"].([]any)
	names := make(map[string]bool)
	for _, raw := range tools {
		names[raw.(map[string]any)["name"].(string)] = true
	}
	for _, want := range []string{
		"query_crm", "search_crm", "get_crm_record",
		"query_support", "query_analytics", "get_analytics_summary",
	} {
		if !names[want] {
			t.Errorf("tool %q missing from schema", want)
		}
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)

	w := doGet(t, h, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if status := decodeBody(t, w)["status"]; status != "ok" {
		t.Errorf("status = %v", status)
	}
}

func TestAgentAsk(t *testing.T) {
	voice := &mockVoice{
		askFn: func(_ context.Context, q string) (string, error) {
			if q != "how many customers?" {
				t.Errorf("question = %q", q)
			}
			return "There are 3 customers.", nil
		},
	}
	h := newTestRouter(t, voice)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/ask",
		strings.NewReader(`{"question": "how many customers?"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if answer := decodeBody(t, w)["answer"]; answer != "There are 3 customers." {
		t.Errorf("answer = %v", answer)
	}
}

func TestAgentAsk_EmptyQuestion(t *testing.T) {
	h := newTestRouter(t, &mockVoice{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/ask",
		strings.NewReader(`{"question": "  "}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestVoiceRoutes_UnavailableWithoutAgent(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/ask",
		strings.NewReader(`{"question": "hi"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeBody(t, w)["code"]; code != "agent_unavailable" {
		t.Errorf("code = %v", code)
	}
}

func TestFilterPairs_PreservesOrder(t *testing.T) {
	pairs := filterPairs("status=open&priority=high&page=2&limit=5&search=x")

	if len(pairs) != 2 {
		t.Fatalf("pairs = %v", pairs)
	}
	if pairs[0].Key != "status" || pairs[1].Key != "priority" {
		t.Errorf("order = %v", pairs)
	}
}
