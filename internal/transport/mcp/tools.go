package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atricence/voxdata/internal/domain/envelope"
	"github.com/atricence/voxdata/internal/domain/record"
	"github.com/atricence/voxdata/internal/usecase/tools"
)

// QueryInput is the input schema for the query_dataset tool.
type QueryInput struct {
	Dataset   string            `json:"dataset" jsonschema:"dataset to query (crm, support or analytics)"`
	Filters   map[string]string `json:"filters,omitempty" jsonschema:"field filters as name/value pairs"`
	Search    string            `json:"search,omitempty" jsonschema:"free-text search instead of filters"`
	SortBy    string            `json:"sort_by,omitempty" jsonschema:"field to sort by"`
	SortOrder string            `json:"sort_order,omitempty" jsonschema:"asc or desc"`
	Page      int               `json:"page,omitempty" jsonschema:"page number, starting at 1"`
	Limit     int               `json:"limit,omitempty" jsonschema:"results per page"`
}

// GetRecordInput is the input schema for the get_record tool.
type GetRecordInput struct {
	Dataset string `json:"dataset" jsonschema:"dataset the record lives in"`
	ID      string `json:"id" jsonschema:"value of the dataset's identifier field"`
}

// SummaryInput is the input schema for the get_summary tool.
type SummaryInput struct {
	Metric string `json:"metric,omitempty" jsonschema:"metric name, omit for all metrics"`
	Days   int    `json:"days,omitempty" jsonschema:"period length in days"`
}

// RecordOutput wraps a single record.
type RecordOutput struct {
	Record record.Record `json:"record"`
}

// SchemaOutput lists the advertised tool definitions.
type SchemaOutput struct {
	Tools []tools.Definition `json:"tools"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_dataset",
		Description: "Query a dataset with filters, search, sorting and pagination",
	}, s.handleQuery)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_record",
		Description: "Fetch a single record by its identifier",
	}, s.handleGetRecord)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_analytics_summary",
		Description: "Aggregate statistics over analytics data for a recent period",
	}, s.handleSummary)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_datasets",
		Description: "List the queryable datasets and their fields",
	}, s.handleListDatasets)
}

// handleQuery handles the query_dataset tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, envelope.Envelope, error) {
	desc, err := s.queries.Fields(input.Dataset)
	if err != nil {
		return nil, envelope.Envelope{}, err
	}

	args := map[string]any{
		"query":      input.Search,
		"sort_by":    input.SortBy,
		"sort_order": input.SortOrder,
		"page":       input.Page,
		"limit":      input.Limit,
	}
	for k, v := range input.Filters {
		args[k] = v
	}

	spec, err := tools.SpecFromArgs(desc, args)
	if err != nil {
		return nil, envelope.Envelope{}, err
	}

	env, err := s.queries.Query(ctx, spec)
	if err != nil {
		return nil, envelope.Envelope{}, err
	}
	return nil, env, nil
}

// handleGetRecord handles the get_record tool invocation.
func (s *Server) handleGetRecord(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRecordInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	rec, err := s.queries.GetByID(ctx, input.Dataset, input.ID)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{Record: rec}, nil
}

// handleSummary handles the get_analytics_summary tool invocation.
func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummaryInput,
) (*mcp.CallToolResult, envelope.Envelope, error) {
	env, err := s.queries.Summary(ctx, "analytics", input.Metric, input.Days)
	if err != nil {
		return nil, envelope.Envelope{}, err
	}
	return nil, env, nil
}

// handleListDatasets handles the list_datasets tool invocation.
func (s *Server) handleListDatasets(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, SchemaOutput, error) {
	defs := tools.Definitions(s.queries.Descriptors(), s.queries.SupportsSummary)
	return nil, SchemaOutput{Tools: defs}, nil
}
