package dto

type Product struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	PriceLabel   string  `json:"price_label"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

type Filter struct {
	Category string `json:"category"`
	Search   string `json:"search"`
	Page     int    `json:"page"`
}
