// Package chi is the synchronous HTTP surface. Every data route returns
// the same response envelope the voice surface consumes.
package chi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/domain"
	domquery "github.com/atricence/voxdata/internal/domain/query"
	healthuc "github.com/atricence/voxdata/internal/usecase/health"
	queryuc "github.com/atricence/voxdata/internal/usecase/query"
	"github.com/atricence/voxdata/internal/usecase/tools"
)

// Voice runs a conversational turn against the language model.
// Nil when the agent is not configured.
type Voice interface {
	Ask(ctx context.Context, question string) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Speak(ctx context.Context, text string) ([]byte, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	queries       *queryuc.Service
	health        *healthuc.Service
	voice         Voice
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. voice may be nil when no
// language-model provider is configured; the voice routes then return 503.
func NewServer(
	queries *queryuc.Service,
	health *healthuc.Service,
	voice Voice,
	logger *zap.Logger,
) *Server {
	s := &Server{
		queries: queries,
		health:  health,
		voice:   voice,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownDataset, http.StatusNotFound, "unknown_dataset"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, "invalid_query"),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, "source_unavailable"),
	}
	return s
}

// Routes registers all handlers on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/data/analytics/summary", s.AnalyticsSummary)
		r.Get("/data/{dataset}", s.QueryDataset)
		r.Get("/data/{dataset}/records/{id}", s.GetRecord)
		r.Get("/tools/schema", s.ToolsSchema)
		r.Post("/agent/ask", s.AgentAsk)
		r.Post("/voice/turn", s.VoiceTurn)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// QueryDataset handles GET /api/v1/data/{dataset}.
//
// Reserved query parameters are search, sort_by, sort_order, page and
// limit; every other parameter is passed to the connector as a filter
// pair. Unknown filter keys are ignored there, so a typo narrows nothing.
func (s *Server) QueryDataset(w http.ResponseWriter, r *http.Request) {
	spec, err := specFromRequest(chi.URLParam(r, "dataset"), r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	env, err := s.queries.Query(r.Context(), spec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, env)
}

// GetRecord handles GET /api/v1/data/{dataset}/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	id := chi.URLParam(r, "id")

	rec, err := s.queries.GetByID(r.Context(), dataset, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// AnalyticsSummary handles GET /api/v1/data/analytics/summary.
func (s *Server) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := 0
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "days must be an integer")
			return
		}
		days = n
	}

	env, err := s.queries.Summary(r.Context(), "analytics", q.Get("metric"), days)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, env)
}

// ToolsSchema handles GET /api/v1/tools/schema.
func (s *Server) ToolsSchema(w http.ResponseWriter, r *http.Request) {
	defs := tools.Definitions(s.queries.Descriptors(), s.queries.SupportsSummary)
	writeJSON(w, http.StatusOK, map[string]any{"tools": defs})
}

// AgentAsk handles POST /api/v1/agent/ask.
func (s *Server) AgentAsk(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		writeError(w, http.StatusServiceUnavailable, "agent_unavailable", "voice agent is not configured")
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "question is required")
		return
	}

	answer, err := s.voice.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// VoiceTurn handles POST /api/v1/voice/turn: audio in, transcription and
// spoken answer out. The synthesized audio comes back base64-encoded so
// the response stays a single JSON document.
func (s *Server) VoiceTurn(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		writeError(w, http.StatusServiceUnavailable, "agent_unavailable", "voice agent is not configured")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "multipart field \"audio\" is required")
		return
	}
	defer file.Close()

	transcript, err := s.voice.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	answer, err := s.voice.Ask(r.Context(), transcript)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	audio, err := s.voice.Speak(r.Context(), answer)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"transcript": transcript,
		"answer":     answer,
		"audio":      base64.StdEncoding.EncodeToString(audio),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// reserved query parameters that are never filter pairs.
var reservedParams = map[string]bool{
	"search":     true,
	"sort_by":    true,
	"sort_order": true,
	"page":       true,
	"limit":      true,
}

// specFromRequest builds a query spec from the URL. Filter pairs keep the
// raw query-string order so the envelope's query text is deterministic.
func specFromRequest(dataset string, r *http.Request) (domquery.Spec, error) {
	q := r.URL.Query()

	dir, err := domquery.ParseDirection(q.Get("sort_order"))
	if err != nil {
		return domquery.Spec{}, err
	}

	page := intParam(q.Get("page"))
	limit := intParam(q.Get("limit"))

	return domquery.New(
		dataset,
		filterPairs(r.URL.RawQuery),
		q.Get("search"),
		q.Get("sort_by"),
		dir,
		page,
		limit,
	)
}

// filterPairs extracts the non-reserved parameters in arrival order.
func filterPairs(rawQuery string) []domquery.Pair {
	var pairs []domquery.Pair
	for _, kv := range strings.Split(rawQuery, "&") {
		if kv == "" {
			continue
		}
		key, value, _ := strings.Cut(kv, "=")
		k, err := url.QueryUnescape(key)
		if err != nil || reservedParams[k] {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		pairs = append(pairs, domquery.Pair{Key: k, Value: v})
	}
	return pairs
}

// intParam parses a pagination parameter, 0 when absent or malformed.
// Malformed pagination is clamped downstream, never a request error.
func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownDataset,
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
