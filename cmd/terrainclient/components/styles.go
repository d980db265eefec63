// Package components holds the lipgloss color palette and style
// constants shared by the terrain client's views.
package components

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor   = lipgloss.Color("39")  // sky blue
	AccentColor    = lipgloss.Color("214") // amber
	DangerColor    = lipgloss.Color("203") // red
	MutedColor     = lipgloss.Color("241") // gray
	BackgroundGray = lipgloss.Color("236")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(PrimaryColor).
			Padding(0, 1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().Foreground(MutedColor)

	ValueStyle = lipgloss.NewStyle().Bold(true)

	WarnValueStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(BackgroundGray).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().Foreground(MutedColor)
)

// Row renders a "label: value" pair with LabelStyle/ValueStyle.
func Row(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value)
}
