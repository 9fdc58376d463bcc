// Package invoker routes tool calls to the commerce backend: it validates
// arguments against each tool's expected shape, fills in paging defaults,
// issues the backend request, and shapes the outcome into an MCP tool result.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/retailbridge/retailbridge/pkg/backend"
	"github.com/retailbridge/retailbridge/pkg/mcp"
	"github.com/retailbridge/retailbridge/pkg/models"
)

// Per-tool paging defaults.
const (
	defaultPageSize    = 50
	suggestionPageSize = 10
)

// Auditor records completed tool invocations. Implementations must be safe
// for concurrent use.
type Auditor interface {
	Record(ctx context.Context, rec models.CallRecord) error
}

// Invoker executes named tools against the backend. It holds no per-call
// state and is safe for concurrent use.
type Invoker struct {
	client  *backend.Client
	auditor Auditor
}

// New creates an Invoker. The auditor may be nil.
func New(client *backend.Client, auditor Auditor) *Invoker {
	return &Invoker{client: client, auditor: auditor}
}

// toolSpec binds a tool name to its outbound request template. The catalog
// package owns the user-facing definitions; this table owns the wire shape.
type toolSpec struct {
	method string
	build  func(a args) (path string, body any, err error)
}

// Call implements mcp.Invoker. Unknown tools and argument failures are
// reported inside the result; only backend faults return an error.
func (inv *Invoker) Call(ctx context.Context, name string, rawArgs json.RawMessage) (mcp.ToolCallResult, error) {
	tool, ok := toolTable[name]
	if !ok {
		return errorResult("Unknown tool: " + name), nil
	}

	a, err := decodeArgs(rawArgs)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err)), nil
	}
	path, body, err := tool.build(a)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err)), nil
	}

	start := time.Now()
	outcome, err := inv.client.Do(ctx, name, tool.method, path, body)
	inv.record(name, tool.method, path, outcome, err, time.Since(start))
	if err != nil {
		// Backend fault: escalate so the dispatcher reports an internal error.
		return mcp.ToolCallResult{}, err
	}

	if outcome.ClientError != nil {
		text, merr := json.MarshalIndent(outcome.ClientError, "", "  ")
		if merr != nil {
			text = []byte(outcome.ClientError.Reason)
		}
		return errorResult(string(text)), nil
	}
	return textResult(prettyJSON(outcome.Payload)), nil
}

func (inv *Invoker) record(name, method, path string, outcome *backend.Outcome, callErr error, latency time.Duration) {
	if inv.auditor == nil {
		return
	}
	rec := models.CallRecord{
		RequestID: uuid.New().String()[:8],
		Tool:      name,
		Method:    method,
		Path:      path,
		IsError:   callErr != nil,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if outcome != nil {
		rec.StatusCode = outcome.StatusCode
		rec.IsError = rec.IsError || outcome.ClientError != nil
	}
	go func() {
		if err := inv.auditor.Record(context.Background(), rec); err != nil {
			log.Printf("invoker: audit record: %v", err)
		}
	}()
}

func textResult(text string) mcp.ToolCallResult {
	return mcp.ToolCallResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) mcp.ToolCallResult {
	return mcp.ToolCallResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

// prettyJSON re-indents a backend payload for the text content block. A
// non-JSON body is passed through untouched.
func prettyJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// toolTable maps tool names to outbound request templates. It must stay in
// step with catalog.Tools(); catalog_test cross-checks the two.
var toolTable = map[string]toolSpec{
	"products_search_by_text": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		searchText, err := a.requireString("searchText")
		if err != nil {
			return "", nil, err
		}
		return "/Products/Search", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"searchText":          searchText,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_search_by_category": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		categoryID, err := a.requireInt("categoryId")
		if err != nil {
			return "", nil, err
		}
		return "/Products/SearchByCategory", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"categoryId":          categoryID,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_by_id": {method: "GET", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("/Products/GetById(recordId=%d,channelId=%d)", recordID, channelID), nil, nil
	}},

	"products_get_by_ids": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		productIDs, err := a.requireIntSlice("productIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetByIds", map[string]any{
			"channelId":           channelID,
			"productIds":          productIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_compare": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		productIDs, err := a.requireIntSlice("productIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/Compare", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"productIds":          productIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_recommendations": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		productIDs, err := a.requireIntSlice("productIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetRecommendedProducts", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"productIds":          productIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_search_suggestions": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		searchText, err := a.requireString("searchText")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetSearchSuggestions", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"searchText":          searchText,
			"queryResultSettings": a.querySettings(suggestionPageSize),
		}, nil
	}},

	"products_get_refiners": {method: "POST", build: func(a args) (string, any, error) {
		criteria, err := a.requireObject("searchCriteria")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetRefiners", map[string]any{
			"searchCriteria":      criteria,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_refiner_values": {method: "POST", build: func(a args) (string, any, error) {
		criteria, err := a.requireObject("searchCriteria")
		if err != nil {
			return "", nil, err
		}
		refinerID, err := a.requireInt("refinerId")
		if err != nil {
			return "", nil, err
		}
		sourceValue, err := a.requireInt("refinerSourceValue")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetRefinerValues", map[string]any{
			"searchCriteria":      criteria,
			"refinerId":           refinerID,
			"refinerSourceValue":  sourceValue,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_refine_search": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		searchText, err := a.requireString("searchText")
		if err != nil {
			return "", nil, err
		}
		refinements, err := a.requireObjectSlice("refinementCriteria")
		if err != nil {
			return "", nil, err
		}
		return "/Products/RefineSearch", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"searchText":          searchText,
			"refinementCriteria":  refinements,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_dimension_values": {method: "POST", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		dimension, err := a.requireInt("dimension")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetDimensionValues", map[string]any{
			"recordId":            recordID,
			"channelId":           channelID,
			"dimension":           dimension,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_variants_by_dimension_values": {method: "POST", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		dimensionValues, err := a.requireObjectSlice("matchingDimensionValues")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetVariantsByDimensionValues", map[string]any{
			"recordId":                recordID,
			"channelId":               channelID,
			"matchingDimensionValues": dimensionValues,
			"queryResultSettings":     a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_attribute_values": {method: "POST", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetAttributeValues", map[string]any{
			"recordId":            recordID,
			"channelId":           channelID,
			"catalogId":           catalogID,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_prices": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		productIDs, err := a.requireIntSlice("productIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetActivePrices", map[string]any{
			"channelId":           channelID,
			"catalogId":           catalogID,
			"productIds":          productIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_availabilities": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		itemIDs, err := a.requireIntSlice("itemIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetProductAvailabilities", map[string]any{
			"channelId":           channelID,
			"itemIds":             itemIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_media_locations": {method: "POST", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetMediaLocations", map[string]any{
			"recordId":            recordID,
			"channelId":           channelID,
			"catalogId":           catalogID,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_media_blobs": {method: "POST", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		catalogID, err := a.requireInt("catalogId")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetMediaBlobs", map[string]any{
			"recordId":            recordID,
			"channelId":           channelID,
			"catalogId":           catalogID,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"products_get_units_of_measure": {method: "GET", build: func(a args) (string, any, error) {
		recordID, err := a.requireInt("recordId")
		if err != nil {
			return "", nil, err
		}
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("/Products/GetUnitsOfMeasure(recordId=%d,channelId=%d)", recordID, channelID), nil, nil
	}},

	"products_get_ratings": {method: "POST", build: func(a args) (string, any, error) {
		channelID, err := a.requireInt("channelId")
		if err != nil {
			return "", nil, err
		}
		productIDs, err := a.requireIntSlice("productIds")
		if err != nil {
			return "", nil, err
		}
		return "/Products/GetProductRatings", map[string]any{
			"channelId":           channelID,
			"productIds":          productIDs,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},

	"customers_search": {method: "POST", build: func(a args) (string, any, error) {
		searchText, err := a.requireString("searchText")
		if err != nil {
			return "", nil, err
		}
		return "/Customers/Search", map[string]any{
			"searchText":          searchText,
			"queryResultSettings": a.querySettings(defaultPageSize),
		}, nil
	}},
}
