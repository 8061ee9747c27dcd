package types

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageSize is the fixed number of products requested per page.
const PageSize = 10

// Category is a dummyjson category identifier, e.g. "mens-shirts".
type Category string

var upper = cases.Upper(language.Und)

// Label returns the category with its first letter upper-cased.
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return upper.String(string(r)) + s[size:]
}

// Product is the read-only projection of a dummyjson product.
type Product struct {
	id        int
	title     string
	price     decimal.Decimal
	thumbnail string
}

// NewProduct creates a new Product with the given fields
func NewProduct(id int, title string, price decimal.Decimal, thumbnail string) Product {
	return Product{
		id:        id,
		title:     strings.TrimSpace(title),
		price:     price,
		thumbnail: thumbnail,
	}
}

// Getters for Product fields
func (p Product) ID() int                { return p.id }
func (p Product) Name() string           { return p.title }
func (p Product) Price() decimal.Decimal { return p.price }
func (p Product) ThumbnailURL() string   { return p.thumbnail }

// PriceLabel renders the price the way the product list shows it.
func (p Product) PriceLabel() string { return "$" + p.price.String() }

// list.Item interface implementation
func (p Product) Title() string       { return p.title }
func (p Product) Description() string { return "Price: " + p.PriceLabel() }
func (p Product) FilterValue() string { return p.title }

// Compile-time check that Product implements list.Item
var _ list.Item = Product{}

// ProductSource is the core abstraction for data access.
// No bubbletea dependency; the TUI and the MCP server both call it.
type ProductSource interface {
	GetCategories(ctx context.Context) ([]Category, error)
	GetProducts(ctx context.Context, f Filter) ([]Product, error)
}
