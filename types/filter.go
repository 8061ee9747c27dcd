package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query string keys read and written by the product view.
const (
	ParamCategory = "category"
	ParamSearch   = "search"
	ParamPage     = "page"
)

// Filter is the (category, search text, page) triple that decides which
// products are shown. It is always derived from a location query string.
type Filter struct {
	Category string
	Search   string
	Page     int
}

// ParseFilter reads a Filter from a location. raw may be a bare query
// ("page=2"), a query with its leading "?", or a full URL. Missing or invalid
// params fall back to empty strings and page 1.
func ParseFilter(raw string) Filter {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}

	values := parseQuery(raw)
	return Filter{
		Category: values[ParamCategory],
		Search:   values[ParamSearch],
		Page:     parsePage(values[ParamPage]),
	}
}

// parseQuery splits raw into key/value pairs the way a browser's
// URLSearchParams does: only "&" separates pairs, the first "=" splits key
// from value, and malformed escapes are kept as literal text. The first
// value of a repeated key wins.
func parseQuery(raw string) map[string]string {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k = unescape(k)
		if _, seen := values[k]; !seen {
			values[k] = unescape(v)
		}
	}
	return values
}

// unescape decodes "+" and %XX escapes. A "%" not followed by two hex
// digits stays as is.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// parsePage reads the leading integer of s ("3", "3rd", " +3").
// Anything that does not yield a positive number is page 1.
func parsePage(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Encode writes the filter back as a location, keys in category, search,
// page order. Empty category and search are omitted.
func (f Filter) Encode() string {
	var parts []string
	if f.Category != "" {
		parts = append(parts, ParamCategory+"="+url.QueryEscape(f.Category))
	}
	if f.Search != "" {
		parts = append(parts, ParamSearch+"="+url.QueryEscape(f.Search))
	}
	if f.Page > 0 {
		parts = append(parts, ParamPage+"="+strconv.Itoa(f.Page))
	}
	return "?" + strings.Join(parts, "&")
}

// WithSearch keeps the category and starts the new search on page 1.
func (f Filter) WithSearch(text string) Filter {
	return Filter{Category: f.Category, Search: text, Page: 1}
}

// WithCategory switches category, clearing search text and resetting the page.
func (f Filter) WithCategory(name string) Filter {
	return Filter{Category: name, Page: 1}
}

// WithPage moves to page n, clamped to 1.
func (f Filter) WithPage(n int) Filter {
	if n < 1 {
		n = 1
	}
	f.Page = n
	return f
}

func (f Filter) Next() Filter { return f.WithPage(f.page() + 1) }
func (f Filter) Prev() Filter { return f.WithPage(f.page() - 1) }

// HasPrev reports whether a previous page exists.
func (f Filter) HasPrev() bool { return f.page() > 1 }

// HasNext guesses whether another page follows one that returned n items.
// There is no total count: a short page is the last one.
func HasNext(n int) bool { return n >= PageSize }

// Skip is the number of products before the current page.
func (f Filter) Skip() int { return (f.page() - 1) * PageSize }

func (f Filter) page() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// EndpointKind names which of the three product listings a filter uses.
type EndpointKind int

const (
	EndpointAll EndpointKind = iota
	EndpointCategory
	EndpointSearch
)

// String returns the string representation of the endpoint kind
func (k EndpointKind) String() string {
	switch k {
	case EndpointAll:
		return "all"
	case EndpointCategory:
		return "category"
	case EndpointSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Endpoint is a resolved product listing request.
type Endpoint struct {
	Kind  EndpointKind
	Value string
	Skip  int
}

// Endpoint picks the listing for the filter. Search text wins over category,
// which wins over the unfiltered listing.
func (f Filter) Endpoint() Endpoint {
	switch {
	case f.Search != "":
		return Endpoint{Kind: EndpointSearch, Value: f.Search, Skip: f.Skip()}
	case f.Category != "":
		return Endpoint{Kind: EndpointCategory, Value: f.Category, Skip: f.Skip()}
	default:
		return Endpoint{Kind: EndpointAll, Skip: f.Skip()}
	}
}

// Path returns the API path and query for the endpoint:
// /products/search?q=..., /products/category/{name} or /products.
func (e Endpoint) Path() string {
	page := fmt.Sprintf("limit=%d&skip=%d", PageSize, e.Skip)
	switch e.Kind {
	case EndpointSearch:
		return "/products/search?q=" + url.QueryEscape(e.Value) + "&" + page
	case EndpointCategory:
		return "/products/category/" + url.PathEscape(e.Value) + "?" + page
	default:
		return "/products?" + page
	}
}
