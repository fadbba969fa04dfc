// Package tools derives machine-callable tool definitions from dataset
// descriptors. The voice agent advertises them to the language model and
// the MCP surface and the /tools/schema endpoint expose the same shapes.
package tools

import (
	"fmt"
	"strconv"
	"strings"

	domquery "github.com/atricence/voxdata/internal/domain/query"
	"github.com/atricence/voxdata/internal/domain/schema"
)

// Definition is one callable tool: a name, a description for the model,
// and a JSON-schema parameter object.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Definitions builds the tool set for every descriptor. summarizable
// reports whether a dataset supports the aggregate summary reduction.
func Definitions(descs []schema.Descriptor, summarizable func(dataset string) bool) []Definition {
	var out []Definition
	for _, d := range descs {
		out = append(out, queryTool(d))
		if len(d.SearchFields()) > 0 {
			out = append(out, searchTool(d))
		}
		if d.IDField() != "" {
			out = append(out, getTool(d))
		}
		if summarizable != nil && summarizable(d.Dataset()) {
			out = append(out, summaryTool(d))
		}
	}
	return out
}

func queryTool(d schema.Descriptor) Definition {
	props := map[string]any{}
	for _, f := range d.Fields() {
		if !f.Filterable() {
			continue
		}
		props[f.Name()] = fieldSchema(f)
	}
	var sortable []string
	for _, f := range d.Fields() {
		if f.Sortable() {
			sortable = append(sortable, f.Name())
		}
	}
	if len(sortable) > 0 {
		props["sort_by"] = map[string]any{
			"type":        "string",
			"description": "Field to sort by.",
			"enum":        sortable,
		}
		props["sort_order"] = map[string]any{
			"type":        "string",
			"description": "Sort direction.",
			"enum":        []string{string(domquery.Asc), string(domquery.Desc)},
		}
	}
	props["page"] = map[string]any{
		"type":        "integer",
		"description": "Page number, starting at 1.",
	}
	props["limit"] = map[string]any{
		"type":        "integer",
		"description": fmt.Sprintf("Results per page, at most %d.", domquery.MaxLimit),
	}

	return Definition{
		Name:        "query_" + d.Dataset(),
		Description: fmt.Sprintf("Query %s with filters, sorting and pagination. %s", d.Dataset(), d.Description()),
		Parameters: map[string]any{
			"type":       "object",
			"properties": props,
		},
	}
}

func searchTool(d schema.Descriptor) Definition {
	return Definition{
		Name: "search_" + d.Dataset(),
		Description: fmt.Sprintf("Free-text search across %s (%s).",
			d.Dataset(), strings.Join(d.SearchFields(), ", ")),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to search for.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results.",
				},
			},
			"required": []string{"query"},
		},
	}
}

func getTool(d schema.Descriptor) Definition {
	return Definition{
		Name:        "get_" + d.Dataset() + "_record",
		Description: fmt.Sprintf("Fetch a single %s record by its %s.", d.Dataset(), d.IDField()),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("Value of the %s field.", d.IDField()),
				},
			},
			"required": []string{"id"},
		},
	}
}

func summaryTool(d schema.Descriptor) Definition {
	return Definition{
		Name:        "get_" + d.Dataset() + "_summary",
		Description: fmt.Sprintf("Aggregate statistics over %s for a recent period.", d.Dataset()),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metric": map[string]any{
					"type":        "string",
					"description": "Metric name to summarize. Omit for all metrics.",
				},
				"days": map[string]any{
					"type":        "integer",
					"description": "Period length in days.",
				},
			},
		},
	}
}

func fieldSchema(f schema.Field) map[string]any {
	s := map[string]any{"description": f.Description()}
	switch f.Type() {
	case schema.Number:
		s["type"] = "number"
	case schema.Date:
		s["type"] = "string"
		s["format"] = "date"
	default:
		s["type"] = "string"
	}
	if len(f.Enum()) > 0 {
		s["enum"] = f.Enum()
	}
	return s
}

// SpecFromArgs converts a tool-call argument map into a query spec.
// Filter pairs follow the descriptor's field declaration order so the
// resulting query text is deterministic regardless of map iteration.
func SpecFromArgs(d schema.Descriptor, args map[string]any) (domquery.Spec, error) {
	var pairs []domquery.Pair
	for _, f := range d.Fields() {
		v, ok := args[f.Name()]
		if !ok {
			continue
		}
		pairs = append(pairs, domquery.Pair{Key: f.Name(), Value: ArgString(v)})
	}

	dir, err := domquery.ParseDirection(stringArg(args, "sort_order"))
	if err != nil {
		return domquery.Spec{}, err
	}

	return domquery.New(
		d.Dataset(),
		pairs,
		stringArg(args, "query"),
		stringArg(args, "sort_by"),
		dir,
		intArg(args, "page"),
		intArg(args, "limit"),
	)
}

// ArgString renders a tool argument value as filter text. Whole-number
// floats print without a fractional part, matching how record values
// render.
func ArgString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	switch t := args[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	}
	return 0
}
