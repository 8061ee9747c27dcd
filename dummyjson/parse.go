package dummyjson

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
	"github.com/shopspring/decimal"

	"github.com/qyinm/prodtui/types"
)

// productPage mirrors the listing envelope shared by all three product endpoints.
// Fields other than the product projection are ignored.
type productPage struct {
	Products []productJSON `json:"products"`
	Total    int           `json:"total"`
	Skip     int           `json:"skip"`
	Limit    int           `json:"limit"`
}

type productJSON struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail string          `json:"thumbnail"`
}

// ParseProducts decodes a product listing body into Products in response order.
// A body without a "products" key yields an empty, non-nil slice.
func ParseProducts(reader io.Reader) ([]types.Product, error) {
	var page productPage
	if err := json.NewDecoder(reader).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	products := make([]types.Product, 0, len(page.Products))
	for _, p := range page.Products {
		products = append(products, types.NewProduct(p.ID, p.Title, p.Price, p.Thumbnail))
	}
	return products, nil
}

// ParseCategories decodes the category-list body, a JSON array of strings.
func ParseCategories(reader io.Reader) ([]types.Category, error) {
	var names []string
	if err := json.NewDecoder(reader).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	categories := make([]types.Category, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		categories = append(categories, types.Category(n))
	}
	return categories, nil
}
