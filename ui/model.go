package ui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/qyinm/prodtui/logger"
	"github.com/qyinm/prodtui/types"
)

// ViewState represents the current view mode
type ViewState int

const (
	ListView ViewState = iota
	CategoryView
	DetailView
)

// Model is the main TUI model. The location query string is the only copy of
// the filter; everything shown is derived from it or loaded for it.
type Model struct {
	source     types.ProductSource
	log        *logger.Logger
	list       list.Model
	categories list.Model
	search     textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	state      ViewState
	location   string
	products   []types.Product
	requestID  int
	loading    bool
	width      int
	height     int
	statusMsg  string
	copyFn     func(string) error
}

// Option customises a Model.
type Option func(*Model)

// WithLogger sets where fetch failures are reported.
func WithLogger(l *logger.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithClipboard replaces the clipboard writer used by the copy key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copyFn = write }
}

// NewModel creates a new Model with the given ProductSource, starting at location.
func NewModel(source types.ProductSource, location string, opts ...Option) Model {
	filter := types.ParseFilter(location)

	l := list.New([]list.Item{}, ProductDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)

	c := list.New(categoryItems(nil), newCategoryDelegate(), 0, 0)
	c.Title = "Select Category"
	c.SetShowHelp(false)
	c.SetShowStatusBar(false)
	c.Styles.Title = TitleStyle
	c.KeyMap.Quit.SetEnabled(false)

	si := textinput.New()
	si.Prompt = ""
	si.Placeholder = "Search for products..."
	si.SetValue(filter.Search)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		source:     source,
		log:        logger.Nop(),
		list:       l,
		categories: c,
		search:     si,
		viewport:   viewport.New(0, 0),
		spinner:    s,
		help:       help.New(),
		keys:       keys,
		state:      ListView,
		location:   filter.Encode(),
		requestID:  1,
		loading:    true,
		statusMsg:  "Loading",
		copyFn:     clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Location returns the current location query string, e.g. "?category=beauty&page=2".
func (m Model) Location() string { return m.location }

// Filter is the filter state parsed from the current location.
func (m Model) Filter() types.Filter { return types.ParseFilter(m.location) }

// Products returns the products currently listed.
func (m Model) Products() []types.Product { return m.products }

// State returns the active view.
func (m Model) State() ViewState { return m.state }

// Init loads categories once and the first page; both run concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchCategories(m.source),
		fetchProducts(m.source, m.location, m.requestID),
		m.spinner.Tick,
	)
}

// navigate rewrites the location for f and reloads products for it.
func (m Model) navigate(f types.Filter) (Model, tea.Cmd) {
	m.location = f.Encode()
	m.requestID++
	m.loading = true

	current := m.Filter()
	if m.search.Value() != current.Search {
		m.search.SetValue(current.Search)
	}
	m.log.Debug("navigate", zap.String("location", m.location), zap.Int("request_id", m.requestID))
	return m, fetchProducts(m.source, m.location, m.requestID)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		return m, nil

	case categoriesMsg:
		if msg.err != nil {
			m.log.Error("fetch categories", zap.Error(msg.err))
			return m, nil
		}
		cmd := m.categories.SetItems(categoryItems(msg.categories))
		return m, cmd

	case productsMsg:
		if msg.requestID != m.requestID {
			m.log.Debug("drop stale products", zap.String("location", msg.location), zap.Int("request_id", msg.requestID))
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error("fetch products", zap.String("location", msg.location), zap.Error(msg.err))
			m.statusMsg = "Ready"
			return m, nil
		}
		m.products = msg.products
		items := make([]list.Item, len(msg.products))
		for i, p := range msg.products {
			items[i] = p
		}
		cmd := m.list.SetItems(items)
		m.list.ResetSelected()
		m.statusMsg = "Ready"
		return m, cmd

	case copiedMsg:
		if msg.err != nil {
			m.log.Warn("copy location", zap.Error(msg.err))
			return m, nil
		}
		m.statusMsg = "Copied " + msg.location
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}

	switch m.state {
	case CategoryView:
		return m.handleCategoryKey(msg)
	case DetailView:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.state = ListView
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	filter := m.Filter()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Category):
		m.state = CategoryView
		m.selectCurrentCategory()
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		if !filter.HasPrev() {
			return m, nil
		}
		return m.navigate(filter.Prev())
	case key.Matches(msg, m.keys.NextPage):
		if !types.HasNext(len(m.products)) {
			return m, nil
		}
		return m.navigate(filter.Next())
	case key.Matches(msg, m.keys.Enter):
		product, ok := m.list.SelectedItem().(types.Product)
		if !ok {
			return m, nil
		}
		m.viewport.SetContent(renderDetail(product))
		m.viewport.GotoTop()
		m.state = DetailView
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, copyLocation(m.copyFn, m.location)
	case key.Matches(msg, m.keys.Refresh):
		cmds := []tea.Cmd{}
		if len(m.categories.Items()) <= 1 {
			cmds = append(cmds, fetchCategories(m.source))
		}
		next, cmd := m.navigate(filter)
		return next, tea.Batch(append(cmds, cmd)...)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizePanes()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKey feeds the search box. Every edit is a navigation, so the
// location follows the text as it is typed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		return m.navigate(m.Filter().WithSearch(m.search.Value()))
	}

	before := m.search.Value()
	var inputCmd tea.Cmd
	m.search, inputCmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, inputCmd
	}
	next, fetchCmd := m.navigate(m.Filter().WithSearch(m.search.Value()))
	return next, tea.Batch(inputCmd, fetchCmd)
}

func (m Model) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the picker is filtering, esc and enter belong to the filter input.
	if m.categories.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case msg.Type == tea.KeyEsc:
			m.state = ListView
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			item, ok := m.categories.SelectedItem().(categoryItem)
			if !ok {
				return m, nil
			}
			m.categories.ResetFilter()
			m.state = ListView
			return m.navigate(m.Filter().WithCategory(string(item.category)))
		}
	}

	var cmd tea.Cmd
	m.categories, cmd = m.categories.Update(msg)
	return m, cmd
}

// selectCurrentCategory moves the picker cursor to the active category.
func (m *Model) selectCurrentCategory() {
	current := types.Category(m.Filter().Category)
	for i, it := range m.categories.Items() {
		if c, ok := it.(categoryItem); ok && c.category == current {
			m.categories.Select(i)
			return
		}
	}
	m.categories.Select(0)
}

// resizePanes adjusts the dimensions of list and viewport based on window size
func (m *Model) resizePanes() {
	availableHeight := m.height - headerHeight - footerHeight
	if m.help.ShowAll {
		rows := 0
		for _, col := range m.keys.FullHelp() {
			rows = max(rows, len(col))
		}
		availableHeight -= rows - 1
	}
	if availableHeight < 0 {
		availableHeight = 0
	}

	m.list.SetSize(m.width, availableHeight)
	m.categories.SetSize(m.width, m.height-footerHeight)
	m.search.Width = m.width - len("Search: ") - 4
	m.help.Width = m.width

	m.viewport.Width = m.width
	m.viewport.Height = m.height - footerHeight
}
