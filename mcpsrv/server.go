package mcpsrv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/qyinm/prodtui/logger"
	"github.com/qyinm/prodtui/mcpsrv/dto"
	"github.com/qyinm/prodtui/types"
)

type categoryListArgs struct {
	Query  string `json:"query,omitempty" jsonschema:"Optional category search query"`
	Offset int    `json:"offset,omitempty" jsonschema:"Optional pagination offset"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Optional page size limit"`
}

type productsListArgs struct {
	Location string `json:"location,omitempty" jsonschema:"Optional location query string, e.g. ?category=beauty&page=2; overrides the other arguments"`
	Category string `json:"category,omitempty" jsonschema:"Optional category slug"`
	Search   string `json:"search,omitempty" jsonschema:"Optional search text; takes precedence over category"`
	Page     int    `json:"page,omitempty" jsonschema:"Page number, default 1"`
}

type locationNavigateArgs struct {
	Location string `json:"location,omitempty" jsonschema:"Current location query string"`
	Action   string `json:"action" jsonschema:"One of: set_search, set_category, next, prev, page"`
	Value    string `json:"value,omitempty" jsonschema:"Search text, category slug, or page number depending on action"`
}

type categoryListOutput struct {
	Query      string         `json:"query"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	NextOffset int            `json:"next_offset"`
	HasMore    bool           `json:"has_more"`
	Total      int            `json:"total"`
	Items      []dto.Category `json:"items"`
}

type productsListOutput struct {
	Location   string        `json:"location"`
	Endpoint   string        `json:"endpoint"`
	Filter     dto.Filter    `json:"filter"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	ItemsCount int           `json:"items_count"`
	Items      []dto.Product `json:"items"`
}

type locationNavigateOutput struct {
	Location string     `json:"location"`
	Endpoint string     `json:"endpoint"`
	Filter   dto.Filter `json:"filter"`
}

type ServerOptions struct {
	Logger *logger.Logger
}

func NewServer(source types.ProductSource, version string, opts *ServerOptions) *mcp.Server {
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	if opts == nil {
		opts = &ServerOptions{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "prodtui", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "category_list",
		Description: "List product categories in API order.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args categoryListArgs) (*mcp.CallToolResult, categoryListOutput, error) {
		return categoryListHandler(ctx, req, args, source, log)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "products_list",
		Description: "List one page of 10 products for a location or for category/search/page arguments.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args productsListArgs) (*mcp.CallToolResult, productsListOutput, error) {
		return productsListHandler(ctx, req, args, source, log)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "location_navigate",
		Description: "Apply a search, category or page change to a location and return the new location.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args locationNavigateArgs) (*mcp.CallToolResult, locationNavigateOutput, error) {
		return locationNavigateHandler(ctx, req, args)
	})

	return server
}

func categoryListHandler(ctx context.Context, _ *mcp.CallToolRequest, args categoryListArgs, source types.ProductSource, log *logger.Logger) (*mcp.CallToolResult, categoryListOutput, error) {
	all, err := source.GetCategories(ctx)
	if err != nil {
		log.Error("fetch categories", zap.Error(err))
		return errorToolResult("fetch categories failed"), categoryListOutput{}, nil
	}

	query := strings.TrimSpace(strings.ToLower(args.Query))
	filtered := make([]types.Category, 0, len(all))
	for _, c := range all {
		if query == "" || strings.Contains(strings.ToLower(string(c)), query) {
			filtered = append(filtered, c)
		}
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	offset := args.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}

	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page := filtered[offset:end]
	nextOffset := end
	hasMore := end < len(filtered)
	if !hasMore {
		nextOffset = -1
	}

	return nil, categoryListOutput{
		Query:      args.Query,
		Offset:     offset,
		Limit:      limit,
		NextOffset: nextOffset,
		HasMore:    hasMore,
		Total:      len(filtered),
		Items:      dto.FromCategories(page),
	}, nil
}

func productsListHandler(ctx context.Context, _ *mcp.CallToolRequest, args productsListArgs, source types.ProductSource, log *logger.Logger) (*mcp.CallToolResult, productsListOutput, error) {
	if args.Page < 0 {
		return errorToolResult("page must be positive"), productsListOutput{}, nil
	}

	var filter types.Filter
	if strings.TrimSpace(args.Location) != "" {
		filter = types.ParseFilter(args.Location)
	} else {
		filter = types.Filter{
			Category: strings.TrimSpace(args.Category),
			Search:   args.Search,
		}.WithPage(args.Page)
	}
	location := filter.Encode()

	products, err := source.GetProducts(ctx, filter)
	if err != nil {
		log.Error("fetch products", zap.String("location", location), zap.Error(err))
		return errorToolResult("fetch products failed"), productsListOutput{}, nil
	}

	return nil, productsListOutput{
		Location:   location,
		Endpoint:   filter.Endpoint().Kind.String(),
		Filter:     dto.FromFilter(filter),
		HasPrev:    filter.HasPrev(),
		HasNext:    types.HasNext(len(products)),
		ItemsCount: len(products),
		Items:      dto.FromProducts(products),
	}, nil
}

func locationNavigateHandler(_ context.Context, _ *mcp.CallToolRequest, args locationNavigateArgs) (*mcp.CallToolResult, locationNavigateOutput, error) {
	filter, err := applyAction(types.ParseFilter(args.Location), args.Action, args.Value)
	if err != nil {
		return errorToolResult(err.Error()), locationNavigateOutput{}, nil
	}
	return nil, locationNavigateOutput{
		Location: filter.Encode(),
		Endpoint: filter.Endpoint().Kind.String(),
		Filter:   dto.FromFilter(filter),
	}, nil
}

func applyAction(f types.Filter, action, value string) (types.Filter, error) {
	switch strings.TrimSpace(strings.ToLower(action)) {
	case "set_search":
		return f.WithSearch(value), nil
	case "set_category":
		return f.WithCategory(strings.TrimSpace(value)), nil
	case "next":
		return f.Next(), nil
	case "prev":
		return f.Prev(), nil
	case "page":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return f, fmt.Errorf("invalid page %q; expected a positive integer", value)
		}
		return f.WithPage(n), nil
	default:
		return f, fmt.Errorf("invalid action %q; expected set_search|set_category|next|prev|page", action)
	}
}

func errorToolResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
