package tui

import (
	"github.com/Dipak-sahani/brainlocker/internal/theme"

	"github.com/charmbracelet/lipgloss"
)

// styles is rebuilt from the active palette whenever the theme changes.
type styles struct {
	// Layout
	app      lipgloss.Style
	header   lipgloss.Style
	help     lipgloss.Style
	errorMsg lipgloss.Style
	success  lipgloss.Style
	confirm  lipgloss.Style

	// Tab bar
	brand     lipgloss.Style
	tab       lipgloss.Style
	tabActive lipgloss.Style
	themeTag  lipgloss.Style

	// Home
	statNumber   lipgloss.Style
	statLabel    lipgloss.Style
	statCard     lipgloss.Style
	menuItem     lipgloss.Style
	menuSelected lipgloss.Style
	title        lipgloss.Style

	// Lists
	listItem     lipgloss.Style
	listSelected lipgloss.Style
	topicBadge   lipgloss.Style
	id           lipgloss.Style
	timestamp    lipgloss.Style
	preview      lipgloss.Style
	answer       lipgloss.Style
	noResults    lipgloss.Style

	// Forms
	label        lipgloss.Style
	value        lipgloss.Style
	input        lipgloss.Style
	inputFocused lipgloss.Style
	valid        lipgloss.Style
	invalid      lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	sm := p.Spacing.Cells(p.Spacing.SM)
	md := p.Spacing.Cells(p.Spacing.MD)

	return styles{
		app: lipgloss.NewStyle().
			Foreground(p.Text).
			Padding(sm, md),

		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border).
			PaddingBottom(sm).
			MarginBottom(sm),

		help: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			MarginTop(sm),

		errorMsg: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true).
			Padding(0, sm),

		success: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true).
			Padding(0, sm),

		confirm: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Warning).
			Foreground(p.Text).
			Padding(0, sm).
			MarginTop(sm),

		brand: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			PaddingRight(md),

		tab: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Padding(0, sm),

		tabActive: lipgloss.NewStyle().
			Foreground(p.Card).
			Background(p.Primary).
			Bold(true).
			Padding(0, sm),

		themeTag: lipgloss.NewStyle().
			Foreground(p.Info).
			PaddingLeft(md),

		statNumber: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Width(8).
			Align(lipgloss.Right),

		statLabel: lipgloss.NewStyle().
			Foreground(p.TextSecondary).
			PaddingLeft(md),

		statCard: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(sm, md).
			MarginBottom(sm),

		menuItem: lipgloss.NewStyle().
			Foreground(p.Text).
			PaddingLeft(md),

		menuSelected: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			PaddingLeft(sm),

		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.PrimaryDark).
			MarginBottom(sm),

		listItem: lipgloss.NewStyle().
			Foreground(p.Text).
			PaddingLeft(md),

		listSelected: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true).
			PaddingLeft(sm),

		topicBadge: lipgloss.NewStyle().
			Foreground(p.Warning).
			Bold(true),

		id: lipgloss.NewStyle().
			Foreground(p.PrimaryLight),

		timestamp: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Italic(true),

		preview: lipgloss.NewStyle().
			Foreground(p.TextSecondary).
			PaddingLeft(4),

		answer: lipgloss.NewStyle().
			Foreground(p.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(p.Success).
			PaddingLeft(sm).
			MarginLeft(4),

		noResults: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Italic(true).
			PaddingLeft(md).
			MarginTop(sm),

		label: lipgloss.NewStyle().
			Foreground(p.TextMuted).
			Width(12).
			Align(lipgloss.Right).
			PaddingRight(sm),

		value: lipgloss.NewStyle().
			Foreground(p.Text),

		input: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Border).
			Foreground(p.Text).
			Padding(0, sm),

		inputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.Primary).
			Foreground(p.Text).
			Padding(0, sm),

		valid: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),

		invalid: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
	}
}
