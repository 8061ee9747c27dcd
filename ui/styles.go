package ui

import "github.com/charmbracelet/lipgloss"

// 16-color ANSI Dracula palette
var (
	DraculaForeground = lipgloss.AdaptiveColor{Light: "0", Dark: "255"}
	DraculaPurple     = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	DraculaPink       = lipgloss.AdaptiveColor{Light: "13", Dark: "13"}
	DraculaCyan       = lipgloss.AdaptiveColor{Light: "6", Dark: "14"}
	DraculaGreen      = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	DraculaComment    = lipgloss.AdaptiveColor{Light: "8", Dark: "7"}

	TitleStyle = lipgloss.NewStyle().
			Foreground(DraculaPink).
			Bold(true).
			Padding(0, 1)

	// Location bar
	LocationStyle = lipgloss.NewStyle().
			Foreground(DraculaPurple).
			Padding(0, 1)

	// Search box and category selector
	LabelStyle = lipgloss.NewStyle().
			Foreground(DraculaComment).
			PaddingLeft(1)
	ValueStyle = lipgloss.NewStyle().
			Foreground(DraculaCyan)

	// Pagination controls
	PagerActiveStyle = lipgloss.NewStyle().
				Foreground(DraculaPink).
				Bold(true)
	PagerDisabledStyle = lipgloss.NewStyle().
				Foreground(DraculaComment).
				Faint(true)
	PagerPageStyle = lipgloss.NewStyle().
			Foreground(DraculaForeground).
			Padding(0, 2)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(DraculaComment).
			Italic(true).
			PaddingLeft(2)

	// Detail view styles
	DetailTitleStyle = lipgloss.NewStyle().
				Foreground(DraculaPink).
				Bold(true)
	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(DraculaComment).
				Width(11)
	DetailValueStyle = lipgloss.NewStyle().
				Foreground(DraculaForeground)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(DraculaComment).
			PaddingLeft(1)
)
