package dto

import "github.com/qyinm/prodtui/types"

func FromProduct(p types.Product) Product {
	return Product{
		ID:           p.ID(),
		Title:        p.Name(),
		Price:        p.Price().InexactFloat64(),
		PriceLabel:   p.PriceLabel(),
		ThumbnailURL: p.ThumbnailURL(),
	}
}

func FromProducts(products []types.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

func FromCategory(c types.Category) Category {
	return Category{Slug: string(c), Label: c.Label()}
}

func FromCategories(categories []types.Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, FromCategory(c))
	}
	return out
}

func FromFilter(f types.Filter) Filter {
	return Filter{Category: f.Category, Search: f.Search, Page: f.Page}
}
