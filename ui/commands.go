package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qyinm/prodtui/types"
)

// Message types for async operations

type categoriesMsg struct {
	categories []types.Category
	err        error
}

type productsMsg struct {
	requestID int
	location  string
	products  []types.Product
	err       error
}

type copiedMsg struct {
	location string
	err      error
}

// fetchCategories returns a tea.Cmd that loads the category list asynchronously
func fetchCategories(source types.ProductSource) tea.Cmd {
	return func() tea.Msg {
		categories, err := source.GetCategories(context.Background())
		return categoriesMsg{categories: categories, err: err}
	}
}

// fetchProducts returns a tea.Cmd that loads the page the location describes
func fetchProducts(source types.ProductSource, location string, requestID int) tea.Cmd {
	return func() tea.Msg {
		products, err := source.GetProducts(context.Background(), types.ParseFilter(location))
		return productsMsg{requestID: requestID, location: location, products: products, err: err}
	}
}

func copyLocation(write func(string) error, location string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{location: location, err: write(location)}
	}
}
