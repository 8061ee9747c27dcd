package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/qyinm/prodtui/types"
)

const (
	// title, location, search box, category selector
	headerHeight = 4
	// pagination, status bar, help
	footerHeight = 3
)

// View renders the current view
func (m Model) View() string {
	switch m.state {
	case CategoryView:
		return lipgloss.JoinVertical(lipgloss.Left, m.categories.View(), m.statusView(), m.help.View(m.keys))
	case DetailView:
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusView(), m.help.View(m.keys))
	default:
		return m.listView()
	}
}

func (m Model) listView() string {
	filter := m.Filter()

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Product List"))
	b.WriteString("\n")
	b.WriteString(LocationStyle.Render(m.location))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Search: ") + m.search.View())
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Select Category: ") + ValueStyle.Render(categoryLabel(filter.Category)))
	b.WriteString("\n")

	if len(m.products) > 0 {
		b.WriteString(m.list.View())
	} else {
		b.WriteString(EmptyStyle.Render("No products found."))
	}
	b.WriteString("\n")

	b.WriteString(m.pagerView(filter))
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// pagerView renders "Previous  Page N  Next"; a control is dimmed when the
// matching key would be ignored.
func (m Model) pagerView(filter types.Filter) string {
	prev := PagerDisabledStyle.Render("◀ Previous")
	if filter.HasPrev() {
		prev = PagerActiveStyle.Render("◀ Previous")
	}
	next := PagerDisabledStyle.Render("Next ▶")
	if types.HasNext(len(m.products)) {
		next = PagerActiveStyle.Render("Next ▶")
	}
	page := PagerPageStyle.Render("Page " + strconv.Itoa(filter.Page))
	return " " + prev + page + next
}

func (m Model) statusView() string {
	status := m.statusMsg
	if m.loading {
		status = m.spinner.View() + " Loading"
	}
	return StatusBarStyle.Render(status)
}

func categoryLabel(name string) string {
	if name == "" {
		return noCategoryLabel
	}
	return types.Category(name).Label()
}

// renderDetail renders the detail pane for one product.
func renderDetail(p types.Product) string {
	row := func(label, value string) string {
		return DetailLabelStyle.Render(label) + DetailValueStyle.Render(value)
	}
	return strings.Join([]string{
		DetailTitleStyle.Render(p.Name()),
		"",
		row("ID", strconv.Itoa(p.ID())),
		row("Price", p.PriceLabel()),
		row("Thumbnail", p.ThumbnailURL()),
	}, "\n")
}
