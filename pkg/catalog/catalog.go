// Package catalog holds the static tool registry: every tool the gateway
// exposes via tools/list, with its JSON Schema. Definitions are created once
// at startup and read-only afterward.
package catalog

import "github.com/retailbridge/retailbridge/pkg/mcp"

// Tools returns the full tool set in stable order.
func Tools() []mcp.ToolDefinition {
	return allTools
}

// Schema fragments shared across tools.

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func integerArray(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "integer"},
		"description": desc,
	}
}

func object(desc string) map[string]any {
	return map[string]any{"type": "object", "description": desc}
}

func objectArray(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "object"},
		"description": desc,
	}
}

// querySettings is the optional paging/sorting block accepted by every
// list-returning tool.
var querySettings = map[string]any{
	"type":        "object",
	"description": "Optional paging and sorting; defaults are applied when omitted",
	"properties": map[string]any{
		"paging": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"top":  map[string]any{"type": "integer", "minimum": 1},
				"skip": map[string]any{"type": "integer", "minimum": 0},
			},
		},
		"sorting": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":          map[string]any{"type": "string"},
				"isDescending": map[string]any{"type": "boolean"},
			},
		},
	},
}

func schema(required []string, props map[string]any) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var allTools = []mcp.ToolDefinition{
	{
		Name:        "products_search_by_text",
		Title:       "Search products by text",
		Description: "Full-text product search within a channel and catalog.",
		InputSchema: schema([]string{"channelId", "catalogId", "searchText"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"searchText":          str("Free-text search query"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_search_by_category",
		Title:       "Search products by category",
		Description: "List products assigned to a category within a channel and catalog.",
		InputSchema: schema([]string{"channelId", "catalogId", "categoryId"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"categoryId":          integer("Category record identifier"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_by_id",
		Title:       "Get product by id",
		Description: "Fetch a single product by its record identifier.",
		InputSchema: schema([]string{"recordId", "channelId"}, map[string]any{
			"recordId":  integer("Product record identifier"),
			"channelId": integer("Commerce channel identifier"),
		}),
	},
	{
		Name:        "products_get_by_ids",
		Title:       "Get products by ids",
		Description: "Fetch multiple products by their record identifiers.",
		InputSchema: schema([]string{"channelId", "productIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"productIds":          integerArray("Product record identifiers"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_compare",
		Title:       "Compare products",
		Description: "Compare attribute values across a set of products.",
		InputSchema: schema([]string{"channelId", "catalogId", "productIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"productIds":          integerArray("Product record identifiers to compare"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_recommendations",
		Title:       "Get product recommendations",
		Description: "Fetch products recommended alongside the given products.",
		InputSchema: schema([]string{"channelId", "catalogId", "productIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"productIds":          integerArray("Seed product record identifiers"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_search_suggestions",
		Title:       "Get search suggestions",
		Description: "Suggest search completions for a partial query.",
		InputSchema: schema([]string{"channelId", "catalogId", "searchText"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"searchText":          str("Partial search text"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_refiners",
		Title:       "Get search refiners",
		Description: "Discover the refiners (facets) available for a product search.",
		InputSchema: schema([]string{"searchCriteria"}, map[string]any{
			"searchCriteria":      object("Product search criteria (context, search condition)"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_refiner_values",
		Title:       "Get refiner values",
		Description: "List the values of one refiner for a product search.",
		InputSchema: schema([]string{"searchCriteria", "refinerId", "refinerSourceValue"}, map[string]any{
			"searchCriteria":      object("Product search criteria (context, search condition)"),
			"refinerId":           integer("Refiner record identifier"),
			"refinerSourceValue":  integer("Refiner source discriminator"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_refine_search",
		Title:       "Refine product search",
		Description: "Full-text product search narrowed by refinement criteria.",
		InputSchema: schema([]string{"channelId", "catalogId", "searchText", "refinementCriteria"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"searchText":          str("Free-text search query"),
			"refinementCriteria":  objectArray("Selected refiner values to apply"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_dimension_values",
		Title:       "Get dimension values",
		Description: "List available values of one product dimension (size, color, style, configuration).",
		InputSchema: schema([]string{"recordId", "channelId", "dimension"}, map[string]any{
			"recordId":            integer("Master product record identifier"),
			"channelId":           integer("Commerce channel identifier"),
			"dimension":           integer("Dimension discriminator (1=color, 2=configuration, 3=size, 4=style)"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_variants_by_dimension_values",
		Title:       "Get variants by dimension values",
		Description: "Resolve product variants matching the selected dimension values.",
		InputSchema: schema([]string{"recordId", "channelId", "matchingDimensionValues"}, map[string]any{
			"recordId":                integer("Master product record identifier"),
			"channelId":               integer("Commerce channel identifier"),
			"matchingDimensionValues": objectArray("Dimension/value pairs the variants must match"),
			"queryResultSettings":     querySettings,
		}),
	},
	{
		Name:        "products_get_attribute_values",
		Title:       "Get product attributes",
		Description: "List attribute values of a product in a channel and catalog.",
		InputSchema: schema([]string{"recordId", "channelId", "catalogId"}, map[string]any{
			"recordId":            integer("Product record identifier"),
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_prices",
		Title:       "Get active prices",
		Description: "Fetch active prices for a set of products.",
		InputSchema: schema([]string{"channelId", "catalogId", "productIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"productIds":          integerArray("Product record identifiers"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_availabilities",
		Title:       "Get product availabilities",
		Description: "Fetch inventory availability for a set of items.",
		InputSchema: schema([]string{"channelId", "itemIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"itemIds":             integerArray("Item identifiers"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_media_locations",
		Title:       "Get media locations",
		Description: "List media location URLs for a product.",
		InputSchema: schema([]string{"recordId", "channelId", "catalogId"}, map[string]any{
			"recordId":            integer("Product record identifier"),
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_media_blobs",
		Title:       "Get media blobs",
		Description: "List media blob metadata for a product.",
		InputSchema: schema([]string{"recordId", "channelId", "catalogId"}, map[string]any{
			"recordId":            integer("Product record identifier"),
			"channelId":           integer("Commerce channel identifier"),
			"catalogId":           integer("Product catalog identifier"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "products_get_units_of_measure",
		Title:       "Get units of measure",
		Description: "Fetch the units of measure defined for a product.",
		InputSchema: schema([]string{"recordId", "channelId"}, map[string]any{
			"recordId":  integer("Product record identifier"),
			"channelId": integer("Commerce channel identifier"),
		}),
	},
	{
		Name:        "products_get_ratings",
		Title:       "Get product ratings",
		Description: "Fetch aggregate ratings for a set of products.",
		InputSchema: schema([]string{"channelId", "productIds"}, map[string]any{
			"channelId":           integer("Commerce channel identifier"),
			"productIds":          integerArray("Product record identifiers"),
			"queryResultSettings": querySettings,
		}),
	},
	{
		Name:        "customers_search",
		Title:       "Search customers",
		Description: "Search customer records by free text.",
		InputSchema: schema([]string{"searchText"}, map[string]any{
			"searchText":          str("Free-text customer search query"),
			"queryResultSettings": querySettings,
		}),
	},
}
