package dummyjson

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qyinm/prodtui/types"
)

const (
	DefaultBaseURL = "https://dummyjson.com"
	DefaultTimeout = 10 * time.Second
	userAgent      = "prodtui/1.0 (+https://github.com/qyinm/prodtui)"
)

// Client implements types.ProductSource over the dummyjson REST API.
// Every call goes to the network; there is no cache.
type Client struct {
	client  *http.Client
	baseURL string
}

// Compile-time interface check
var _ types.ProductSource = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New creates a new Client against DefaultBaseURL unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// GetCategories fetches the category list in API order.
func (c *Client) GetCategories(ctx context.Context) ([]types.Category, error) {
	body, err := c.get(ctx, "/products/category-list")
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer body.Close()

	categories, err := ParseCategories(body)
	if err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return categories, nil
}

// GetProducts fetches one page of products from the endpoint the filter selects.
func (c *Client) GetProducts(ctx context.Context, f types.Filter) ([]types.Product, error) {
	endpoint := f.Endpoint()
	body, err := c.get(ctx, endpoint.Path())
	if err != nil {
		return nil, fmt.Errorf("fetch %s products: %w", endpoint.Kind, err)
	}
	defer body.Close()

	products, err := ParseProducts(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s products: %w", endpoint.Kind, err)
	}
	return products, nil
}

// URL returns the absolute URL GetProducts requests for f.
func (c *Client) URL(f types.Filter) string {
	return c.baseURL + f.Endpoint().Path()
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		// Read body for error context
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return resp.Body, nil
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.Code, e.Body)
}
