package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Margin(0, 0, 1, 0)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(1, 2).
			Margin(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(1, 2).
				Margin(0, 1)
)

// Text styles
var (
	MutedTextStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(palette.Warning).
				Bold(true)

	SuccessTextStyle = lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Width(22)

	ValueStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true)
)

// KeyValue renders an aligned "label value" line.
func KeyValue(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value))
}
