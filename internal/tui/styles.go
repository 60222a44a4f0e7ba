package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary     = lipgloss.Color("#1B5E20")
	colorAccent      = lipgloss.Color("#F9A825")
	colorMuted       = lipgloss.Color("#9E9E9E")
	colorDestructive = lipgloss.Color("#E53935")
)

// Styles groups the lipgloss styles of the login form and dashboard.
type Styles struct {
	Card     lipgloss.Style
	School   lipgloss.Style
	System   lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Button   lipgloss.Style
	ButtonOn lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the school palette.
func DefaultStyles() Styles {
	return Styles{
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 3),
		School:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		System:   lipgloss.NewStyle().Foreground(colorAccent),
		Label:    lipgloss.NewStyle().Foreground(colorMuted),
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Button:   lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted).Border(lipgloss.NormalBorder()),
		ButtonOn: lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(colorPrimary).Border(lipgloss.NormalBorder()).BorderForeground(colorPrimary),
		Error:    lipgloss.NewStyle().Foreground(colorDestructive),
		Notice:   lipgloss.NewStyle().Foreground(colorPrimary),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}
