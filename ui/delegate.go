package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/qyinm/prodtui/types"
)

// ProductDelegate is a custom list delegate for rendering Product items
type ProductDelegate struct{}

// Height returns the height of a list item (2 lines)
func (d ProductDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between list items
func (d ProductDelegate) Spacing() int {
	return 1
}

// Update handles updates for the delegate (no-op for products)
func (d ProductDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single product item
func (d ProductDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	product, ok := item.(types.Product)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	// Line 1: ID + Title + Price
	// Format: "#12  Red Lipstick                          Price: $12.99"
	idStr := fmt.Sprintf("#%-4d", product.ID())
	priceStr := " " + product.Description()
	nameStr := fitWidth(product.Name(), m.Width()-runewidth.StringWidth(idStr)-runewidth.StringWidth(priceStr))

	var line1 string
	if isSelected {
		idStyle := lipgloss.NewStyle().Foreground(DraculaCyan).Bold(true)
		nameStyle := lipgloss.NewStyle().Foreground(DraculaPink).Bold(true)
		priceStyle := lipgloss.NewStyle().Foreground(DraculaGreen).Bold(true)
		line1 = idStyle.Render(idStr) + nameStyle.Render(nameStr) + priceStyle.Render(priceStr)
	} else {
		idStyle := lipgloss.NewStyle().Foreground(DraculaComment)
		nameStyle := lipgloss.NewStyle().Foreground(DraculaCyan)
		priceStyle := lipgloss.NewStyle().Foreground(DraculaGreen)
		line1 = idStyle.Render(idStr) + nameStyle.Render(nameStr) + priceStyle.Render(priceStr)
	}

	// Line 2: thumbnail URL (indented, dimmed)
	indent := "      "
	thumb := truncate(product.ThumbnailURL(), m.Width()-len(indent))
	line2 := indent + lipgloss.NewStyle().Foreground(DraculaComment).Render(thumb)

	fmt.Fprint(w, line1+"\n"+line2)
}

// fitWidth truncates s to width cells, or pads it with spaces up to width.
func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// categoryItem is one row of the category picker. The empty category means
// "no category filter".
type categoryItem struct {
	category types.Category
}

const noCategoryLabel = "-- Select a Category --"

func (c categoryItem) Title() string {
	if c.category == "" {
		return noCategoryLabel
	}
	return c.category.Label()
}
func (c categoryItem) Description() string { return string(c.category) }
func (c categoryItem) FilterValue() string { return string(c.category) }

var _ list.Item = categoryItem{}

func newCategoryDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(DraculaPink).BorderForeground(DraculaPink)
	return d
}

func categoryItems(categories []types.Category) []list.Item {
	items := make([]list.Item, 0, len(categories)+1)
	items = append(items, categoryItem{})
	for _, c := range categories {
		items = append(items, categoryItem{category: c})
	}
	return items
}
