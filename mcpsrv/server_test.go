package mcpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qyinm/prodtui/logger"
	"github.com/qyinm/prodtui/types"
)

type fakeSource struct {
	categories []types.Category
	products   []types.Product
	filters    []types.Filter
	failCat    bool
	failProds  bool
}

func newFakeSource() *fakeSource {
	products := make([]types.Product, 0, types.PageSize)
	for i := 1; i <= types.PageSize; i++ {
		products = append(products, types.NewProduct(i, "Demo Product", decimal.RequireFromString("9.99"), "https://img.example/demo.png"))
	}
	return &fakeSource{
		categories: []types.Category{"beauty", "fragrances", "furniture", "mens-shirts", "mens-shoes", "womens-shoes"},
		products:   products,
	}
}

func (f *fakeSource) GetCategories(ctx context.Context) ([]types.Category, error) {
	if f.failCat {
		return nil, errors.New("upstream category error")
	}
	return f.categories, nil
}

func (f *fakeSource) GetProducts(ctx context.Context, filter types.Filter) ([]types.Product, error) {
	f.filters = append(f.filters, filter)
	if f.failProds {
		return nil, errors.New("upstream products error")
	}
	return f.products, nil
}

func TestToolCategoryListPaging(t *testing.T) {
	_, out, err := categoryListHandler(context.Background(), nil, categoryListArgs{Offset: 0, Limit: 4}, newFakeSource(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 6 {
		t.Fatalf("unexpected total: got %d want 6", out.Total)
	}
	if len(out.Items) != 4 {
		t.Fatalf("unexpected items len: %d", len(out.Items))
	}
	if out.NextOffset != 4 || !out.HasMore {
		t.Fatalf("unexpected next offset: %d has_more=%v", out.NextOffset, out.HasMore)
	}

	_, last, _ := categoryListHandler(context.Background(), nil, categoryListArgs{Offset: 4, Limit: 4}, newFakeSource(), nil)
	if len(last.Items) != 2 || last.NextOffset != -1 || last.HasMore {
		t.Fatalf("unexpected last page: %+v", last)
	}
}

func TestToolCategoryListQuery(t *testing.T) {
	_, out, err := categoryListHandler(context.Background(), nil, categoryListArgs{Query: " SHOES "}, newFakeSource(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("unexpected total: got %d want 2", out.Total)
	}
	if out.Items[0].Slug != "mens-shoes" || out.Items[0].Label != "Mens-shoes" {
		t.Fatalf("unexpected first item: %+v", out.Items[0])
	}
}

func TestToolProductsListFromArgs(t *testing.T) {
	src := newFakeSource()
	_, out, err := productsListHandler(context.Background(), nil, productsListArgs{Category: "beauty", Search: "red", Page: 2}, src, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Location != "?category=beauty&search=red&page=2" {
		t.Errorf("location = %q", out.Location)
	}
	if out.Endpoint != "search" {
		t.Errorf("endpoint = %q, want search", out.Endpoint)
	}
	if !out.HasPrev || !out.HasNext {
		t.Errorf("has_prev=%v has_next=%v, want both true", out.HasPrev, out.HasNext)
	}
	if out.ItemsCount != types.PageSize {
		t.Errorf("items_count = %d", out.ItemsCount)
	}
	if got := src.filters[0]; got != (types.Filter{Category: "beauty", Search: "red", Page: 2}) {
		t.Errorf("source filter = %+v", got)
	}
}

func TestToolProductsListFromLocation(t *testing.T) {
	src := newFakeSource()
	src.products = src.products[:3]
	_, out, err := productsListHandler(context.Background(), nil, productsListArgs{Location: "?category=laptops", Search: "ignored"}, src, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Location != "?category=laptops&page=1" || out.Endpoint != "category" {
		t.Errorf("location=%q endpoint=%q", out.Location, out.Endpoint)
	}
	if out.HasPrev || out.HasNext {
		t.Errorf("has_prev=%v has_next=%v, want both false", out.HasPrev, out.HasNext)
	}
}

func TestToolLocationNavigate(t *testing.T) {
	tests := []struct {
		name string
		args locationNavigateArgs
		want string
	}{
		{name: "search resets page", args: locationNavigateArgs{Location: "?category=beauty&page=3", Action: "set_search", Value: "oil"}, want: "?category=beauty&search=oil&page=1"},
		{name: "category clears search", args: locationNavigateArgs{Location: "?search=oil&page=3", Action: "set_category", Value: "laptops"}, want: "?category=laptops&page=1"},
		{name: "next", args: locationNavigateArgs{Location: "?page=3", Action: "next"}, want: "?page=4"},
		{name: "prev stops at one", args: locationNavigateArgs{Location: "", Action: "prev"}, want: "?page=1"},
		{name: "page", args: locationNavigateArgs{Location: "?search=a", Action: "PAGE", Value: "5"}, want: "?search=a&page=5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out, err := locationNavigateHandler(context.Background(), nil, tt.args)
			if err != nil || result != nil {
				t.Fatalf("unexpected failure: result=%v err=%v", result, err)
			}
			if out.Location != tt.want {
				t.Errorf("location = %q, want %q", out.Location, tt.want)
			}
		})
	}
}

func TestToolLocationNavigateInvalid(t *testing.T) {
	for _, args := range []locationNavigateArgs{
		{Action: "jump"},
		{Action: "page", Value: "zero"},
		{Action: "page", Value: "0"},
	} {
		result, _, err := locationNavigateHandler(context.Background(), nil, args)
		if err != nil {
			t.Fatalf("unexpected handler error: %v", err)
		}
		if result == nil || !result.IsError {
			t.Fatalf("expected IsError for %+v", args)
		}
	}
}

func TestToolUpstreamFailuresIsError(t *testing.T) {
	f1 := newFakeSource()
	f1.failCat = true
	r1, _, _ := categoryListHandler(context.Background(), nil, categoryListArgs{}, f1, nil)
	if r1 == nil || !r1.IsError {
		t.Fatalf("category failure must return IsError")
	}

	f2 := newFakeSource()
	f2.failProds = true
	r2, _, _ := productsListHandler(context.Background(), nil, productsListArgs{Page: 1}, f2, nil)
	if r2 == nil || !r2.IsError {
		t.Fatalf("products failure must return IsError")
	}

	r3, _, _ := productsListHandler(context.Background(), nil, productsListArgs{Page: -1}, newFakeSource(), nil)
	if r3 == nil || !r3.IsError {
		t.Fatalf("negative page must return IsError")
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	resp, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareSuccess(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Authorization": "Bearer secret"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareXAPIKeySuccess(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"X-API-Key": "secret"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareMalformedBearer(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Authorization": "Bearer"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Origin": "https://evil.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistMiddlewareAllowed(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	headers := map[string]string{"Origin": "https://app.example"}
	resp, err := postInitialize(srv.URL+"/mcp", headers)
	if err != nil {
		t.Fatalf("initialize request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOriginAllowlistPreflight(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{AllowedOrigins: []string{"https://app.example"}, RPS: 100, Burst: 100}, &ServerOptions{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 1, Burst: 1}, &ServerOptions{})
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	defer resp1.Body.Close()
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.StatusCode)
	}

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}
}

func TestRateLimitRefill(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{RPS: 20, Burst: 1}, &ServerOptions{})
	defer srv.Close()

	resp1, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp1.Body.Close()

	resp2, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", resp2.StatusCode)
	}

	time.Sleep(60 * time.Millisecond)
	resp3, err := postInitialize(srv.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("third request failed: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected third request 200 after refill, got %d", resp3.StatusCode)
	}
}

func TestRejectionsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := &ServerOptions{Logger: logger.FromZap(zap.New(core))}
	srv := startTestServer(newFakeSource(), Config{APIKey: "secret", AllowedOrigins: []string{"https://ok.example"}}, opts)
	defer srv.Close()

	resp, err := postInitialize(srv.URL+"/mcp", map[string]string{"Origin": "https://evil.example"})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	resp, err = postInitialize(srv.URL+"/mcp", map[string]string{"X-API-Key": "wrong"})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 rejection logs, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusForbidden) {
		t.Errorf("first rejection status = %v, want 403", got)
	}
	if got := entries[0].ContextMap()["origin"]; got != "https://evil.example" {
		t.Errorf("first rejection origin = %v", got)
	}
	if got := entries[1].ContextMap()["status"]; got != int64(http.StatusUnauthorized) {
		t.Errorf("second rejection status = %v, want 401", got)
	}
}

func TestStatelessGetMethod(t *testing.T) {
	handler := NewHandler(NewServer(newFakeSource(), "dev", &ServerOptions{}), StreamableOptions(Config{Stateless: true}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestMCPListTools(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, &ServerOptions{})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	for _, name := range []string{"category_list", "products_list", "location_navigate"} {
		if !containsTool(tools.Tools, name) {
			t.Fatalf("missing tool %q", name)
		}
	}
}

func TestMCPCoreTools(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, &ServerOptions{})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	cases := []mcp.CallToolParams{
		{Name: "category_list", Arguments: map[string]any{"offset": 0, "limit": 5}},
		{Name: "products_list", Arguments: map[string]any{"location": "?category=beauty&page=2"}},
		{Name: "products_list", Arguments: map[string]any{"search": "phone"}},
		{Name: "location_navigate", Arguments: map[string]any{"location": "?page=1", "action": "next"}},
	}

	for _, tc := range cases {
		result, err := session.CallTool(ctx, &tc)
		if err != nil {
			t.Fatalf("call tool %s failed: %v", tc.Name, err)
		}
		if result.IsError {
			t.Fatalf("tool %s returned IsError=true", tc.Name)
		}
	}
}

func TestMCPProductsListStructuredOutput(t *testing.T) {
	ctx := context.Background()
	srv := startTestServer(newFakeSource(), Config{}, &ServerOptions{})
	defer srv.Close()

	session := connectTestClient(t, ctx, srv.URL+"/mcp")
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "products_list", Arguments: map[string]any{"location": "?search=demo&page=3"}})
	if err != nil {
		t.Fatalf("products_list call failed: %v", err)
	}
	b, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out productsListOutput
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	if out.Location != "?search=demo&page=3" || out.Endpoint != "search" || len(out.Items) != types.PageSize {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestHealthz(t *testing.T) {
	srv := startTestServer(newFakeSource(), Config{}, &ServerOptions{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp2, err := http.Post(srv.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatalf("healthz post failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp2.StatusCode)
	}
}

func startTestServer(source types.ProductSource, cfg Config, opts *ServerOptions) *httptest.Server {
	if cfg.RPS <= 0 {
		cfg.RPS = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}
	var log *logger.Logger
	if opts != nil {
		log = opts.Logger
	}
	mux := NewMux(NewServer(source, "test", opts), cfg, log)
	return httptest.NewServer(mux)
}

func connectTestClient(t *testing.T, ctx context.Context, endpoint string) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return session
}

func containsTool(tools []*mcp.Tool, name string) bool {
	for _, tool := range tools {
		if tool != nil && tool.Name == name {
			return true
		}
	}
	return false
}

func postInitialize(url string, headers map[string]string) (*http.Response, error) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "test",
				"version": "1",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}
