package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Search    key.Binding
	Category  key.Binding
	Enter     key.Binding
	Back      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Copy      key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Category:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/←", "previous")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/→", "next")),
	Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy location")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}

// ShortHelp returns short help key bindings (for help.Model)
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Category, k.PrevPage, k.NextPage, k.Enter, k.Quit}
}

// FullHelp returns full help key bindings
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Search, k.Category},
		{k.PrevPage, k.NextPage, k.Copy, k.Refresh},
		{k.Help, k.Quit},
	}
}
