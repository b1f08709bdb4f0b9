package tui

import "github.com/charmbracelet/lipgloss"

const (
	cardWidth  = 38
	cardHeight = 8 // rendered lines including border and margin
)

// Lipgloss styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	createStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42")).
			Bold(true).
			Padding(0, 1)

	sortStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	activeSortStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(cardWidth).
			MarginRight(1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("51"))

	skeletonStyle = cardStyle.
			Foreground(lipgloss.Color("238"))

	avatarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("63")).
			Bold(true).
			Padding(0, 1)

	avatarLogoStyle = avatarStyle.
			Background(lipgloss.Color("214"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242")).
				Italic(true)

	counterValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	emptyTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true).
			MarginTop(1)

	emptyBoxStyle = lipgloss.NewStyle().
			Padding(1, 4).
			Align(lipgloss.Center)
)
